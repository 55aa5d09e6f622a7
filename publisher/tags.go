package publisher

import (
	"strings"

	"syndicate-service/model"
)

// categoryTags is the fixed per-category tag vocabulary mixed into every
// platform's tag set alongside the article's explicit keywords.
var categoryTags = map[string][]string{
	"travel":       {"travel", "wanderlust"},
	"destinations": {"travel", "destinations"},
	"guides":       {"travel", "travelguide"},
	"food":         {"foodtravel", "travel"},
	"gear":         {"travelgear", "travel"},
	"newsletter":   {"travel", "newsletter"},
}

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true,
	"before": true, "best": true, "every": true, "from": true, "have": true,
	"here": true, "into": true, "just": true, "like": true, "more": true,
	"most": true, "only": true, "over": true, "some": true, "than": true,
	"that": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "through": true, "what": true, "when": true, "where": true, "which": true, "will": true,
	"with": true, "without": true, "your": true,
}

// BuildTags assembles the deduplicated tag set for a post: explicit
// keywords first, then the category vocabulary, capped at max. Tags are
// lowercased with non-alphanumeric characters stripped.
func BuildTags(content model.PublishableContent, max int) []string {
	seen := make(map[string]bool)
	var tags []string

	add := func(raw string) {
		tag := sanitizeTag(raw)
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, kw := range content.Keywords {
		add(kw)
	}
	for _, tag := range categoryTags[content.Category] {
		add(tag)
	}
	if len(tags) == 0 {
		add(model.DefaultCategory)
	}

	if max > 0 && len(tags) > max {
		tags = tags[:max]
	}
	return tags
}

func sanitizeTag(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractKeywords pulls naive keywords out of free text: words of four or
// more letters that are not stopwords, capitalized, deduplicated, capped.
func ExtractKeywords(text string, max int) []string {
	seen := make(map[string]bool)
	var words []string

	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'))
	}) {
		word := strings.ToLower(field)
		if len(word) < 4 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, strings.ToUpper(word[:1])+word[1:])
		if max > 0 && len(words) >= max {
			break
		}
	}
	return words
}

// ComposeStatus builds a post body of title, description, link and
// hashtags under limit characters. The free-text description is truncated
// first; hashtags are dropped from the end only if that is not enough.
func ComposeStatus(content model.PublishableContent, tags []string, limit int) string {
	hashtags := make([]string, len(tags))
	for i, tag := range tags {
		hashtags[i] = "#" + tag
	}

	for {
		fixed := content.Title + "\n\n" + content.Link
		if len(hashtags) > 0 {
			fixed += "\n\n" + strings.Join(hashtags, " ")
		}

		budget := limit - len([]rune(fixed)) - 2
		if budget >= 0 {
			description := []rune(content.Description)
			if len(description) > budget {
				if budget > 1 {
					description = append(description[:budget-1], '…')
				} else {
					description = nil
				}
			}
			body := content.Title
			if len(description) > 0 {
				body += "\n\n" + string(description)
			}
			body += "\n\n" + content.Link
			if len(hashtags) > 0 {
				body += "\n\n" + strings.Join(hashtags, " ")
			}
			if len([]rune(body)) <= limit {
				return body
			}
		}

		if len(hashtags) == 0 {
			// Nothing left to drop; hard-truncate.
			runes := []rune(content.Title + "\n\n" + content.Link)
			if len(runes) > limit {
				runes = runes[:limit]
			}
			return string(runes)
		}
		hashtags = hashtags[:len(hashtags)-1]
	}
}
