package publisher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"syndicate-service/model"
)

func TestBuildTagsMergesKeywordsAndCategoryVocabulary(t *testing.T) {
	content := model.PublishableContent{
		Title:    "Rust vs Go",
		Category: "guides",
		Keywords: []string{"backend", "performance"},
	}

	tags := BuildTags(content, 10)

	assert.Contains(t, tags, "backend")
	assert.Contains(t, tags, "performance")
	assert.Contains(t, tags, "travelguide")
	assert.Contains(t, tags, "travel")
}

func TestBuildTagsDeduplicates(t *testing.T) {
	content := model.PublishableContent{
		Category: "travel",
		Keywords: []string{"Travel", "travel", "TRAVEL", "beaches"},
	}

	tags := BuildTags(content, 10)

	count := 0
	for _, tag := range tags {
		if tag == "travel" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, tags, "beaches")
}

func TestBuildTagsSanitizesAndCaps(t *testing.T) {
	content := model.PublishableContent{
		Category: "food",
		Keywords: []string{"street food!", "night-markets", "", "  "},
	}

	tags := BuildTags(content, 2)

	assert.Len(t, tags, 2)
	for _, tag := range tags {
		assert.Regexp(t, "^[a-z0-9]+$", tag)
	}
}

func TestBuildTagsFallsBackToDefault(t *testing.T) {
	tags := BuildTags(model.PublishableContent{Category: "unknown"}, 5)
	assert.Equal(t, []string{model.DefaultCategory}, tags)
}

func TestExtractKeywords(t *testing.T) {
	words := ExtractKeywords("The best hidden beaches near Lisbon that locals love", 10)

	assert.Contains(t, words, "Hidden")
	assert.Contains(t, words, "Beaches")
	assert.Contains(t, words, "Lisbon")
	assert.Contains(t, words, "Locals")
	// Stopwords and short words are dropped.
	assert.NotContains(t, words, "Best")
	assert.NotContains(t, words, "That")
	assert.NotContains(t, words, "The")
}

func TestExtractKeywordsCapsAndDeduplicates(t *testing.T) {
	words := ExtractKeywords("lisbon lisbon lisbon porto porto coimbra braga evora", 3)
	assert.Equal(t, []string{"Lisbon", "Porto", "Coimbra"}, words)
}

func TestComposeStatusUnderLimit(t *testing.T) {
	content := model.PublishableContent{
		Title:       "Hidden Coves of Menorca",
		Description: "Seven quiet swimming spots you can still reach on foot.",
		Link:        "https://wayfarerlog.com/hidden-coves-menorca",
	}
	tags := []string{"travel", "menorca"}

	status := ComposeStatus(content, tags, 500)

	assert.LessOrEqual(t, len([]rune(status)), 500)
	assert.Contains(t, status, content.Title)
	assert.Contains(t, status, content.Description)
	assert.Contains(t, status, content.Link)
	assert.Contains(t, status, "#travel")
	assert.Contains(t, status, "#menorca")
}

func TestComposeStatusTruncatesDescriptionBeforeDroppingTags(t *testing.T) {
	content := model.PublishableContent{
		Title:       "Hidden Coves of Menorca",
		Description: strings.Repeat("A very long description of the coves. ", 40),
		Link:        "https://wayfarerlog.com/hidden-coves-menorca",
	}
	tags := []string{"travel", "menorca", "beaches"}

	status := ComposeStatus(content, tags, 300)

	assert.LessOrEqual(t, len([]rune(status)), 300)
	// All hashtags survive; the free text gives way first.
	assert.Contains(t, status, "#travel")
	assert.Contains(t, status, "#menorca")
	assert.Contains(t, status, "#beaches")
	assert.Contains(t, status, "…")
}

func TestComposeStatusDropsTagsWhenFixedPartsOverflow(t *testing.T) {
	content := model.PublishableContent{
		Title: strings.Repeat("Long Title ", 10),
		Link:  "https://wayfarerlog.com/post",
	}
	tags := []string{"travel", "menorca", "beaches", "hiking", "coves"}

	status := ComposeStatus(content, tags, 140)

	assert.LessOrEqual(t, len([]rune(status)), 140)
	assert.Contains(t, status, content.Link)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://wayfarerlog.com/a", NormalizeURL("https://Wayfarerlog.com/A/"))
	assert.Equal(t, "https://wayfarerlog.com/a", NormalizeURL("  https://wayfarerlog.com/a  "))
}
