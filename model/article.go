package model

import (
	"strings"
	"time"
)

// DefaultCategory is used when an article carries no category tags.
const DefaultCategory = "travel"

type Article struct {
	ID             string    `json:"id" bson:"_id"`
	Title          string    `json:"title" bson:"title"`
	Description    string    `json:"description" bson:"description"`
	SEOTitle       string    `json:"seoTitle,omitempty" bson:"seoTitle,omitempty"`
	SEODescription string    `json:"seoDescription,omitempty" bson:"seoDescription,omitempty"`
	URL            string    `json:"url" bson:"url"`
	Image          string    `json:"image,omitempty" bson:"image,omitempty"`
	Categories     []string  `json:"categories" bson:"categories"`
	Keywords       []string  `json:"keywords" bson:"keywords"`
	Published      bool      `json:"published" bson:"published"`
	PublishedAt    time.Time `json:"publishedAt" bson:"publishedAt"`
}

// PublishableContent is the shared metadata projection every platform
// adapter consumes. SEO overrides win over the display title/description.
type PublishableContent struct {
	Title       string
	Description string
	Link        string
	Image       string
	Category    string
	Keywords    []string
}

func Project(a Article) PublishableContent {
	title := a.Title
	if a.SEOTitle != "" {
		title = a.SEOTitle
	}

	description := a.Description
	if a.SEODescription != "" {
		description = a.SEODescription
	}

	category := DefaultCategory
	if len(a.Categories) > 0 && strings.TrimSpace(a.Categories[0]) != "" {
		category = strings.ToLower(strings.TrimSpace(a.Categories[0]))
	}

	return PublishableContent{
		Title:       title,
		Description: description,
		Link:        a.URL,
		Image:       a.Image,
		Category:    category,
		Keywords:    a.Keywords,
	}
}
