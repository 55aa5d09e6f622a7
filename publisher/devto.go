package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"syndicate-service/config"
	"syndicate-service/model"
)

// Devto mirrors articles as dev.to posts with a canonical_url back to the
// site. The account's published history is listable, which makes dev.to
// the one platform with a bulk dedup oracle.
type Devto struct {
	cfg     config.DevtoConfig
	client  *http.Client
	baseURL string
}

func NewDevto(cfg config.DevtoConfig) *Devto {
	return &Devto{cfg: cfg, client: newHTTPClient(), baseURL: "https://dev.to"}
}

func (d *Devto) Name() string { return model.PlatformDevto }

func (d *Devto) Enabled() bool { return d.cfg.APIKey != "" }

func (d *Devto) Publish(ctx context.Context, content model.PublishableContent) model.PublishResult {
	if !d.Enabled() {
		return model.Skip(d.Name(), "no API key configured")
	}

	markdown := content.Description
	if markdown != "" {
		markdown += "\n\n"
	}
	markdown += fmt.Sprintf("Originally published at [%s](%s).", content.Link, content.Link)

	body, _ := json.Marshal(map[string]any{
		"article": map[string]any{
			"title":         content.Title,
			"published":     true,
			"canonical_url": content.Link,
			"description":   content.Description,
			"main_image":    content.Image,
			"tags":          BuildTags(content, 4),
			"body_markdown": markdown,
		},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+"/api/articles", bytes.NewReader(body))
	if err != nil {
		log.Printf("devto: building request failed: %v", err)
		return model.Failure(d.Name(), err)
	}
	req.Header.Set("api-key", d.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("devto: creating article failed: %v", err)
		return model.Failure(d.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := fmt.Errorf("HTTP %d creating article", resp.StatusCode)
		log.Printf("devto: %v", err)
		return model.Failure(d.Name(), err)
	}

	var created struct {
		ID  json.Number `json:"id"`
		URL string      `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Printf("devto: decoding response failed: %v", err)
		return model.Failure(d.Name(), err)
	}

	log.Printf("devto: created article %s for %s", created.ID.String(), content.Link)
	return model.Success(d.Name(), created.ID.String())
}

// ListRemoteURLs pages through the account's published articles and
// returns the set of their normalized canonical URLs.
func (d *Devto) ListRemoteURLs(ctx context.Context) (map[string]bool, error) {
	urls := make(map[string]bool)
	if !d.Enabled() {
		return urls, nil
	}

	pageSize := d.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/api/articles/me/published?page=%d&per_page=%d", d.baseURL, page, pageSize)
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return urls, err
		}
		req.Header.Set("api-key", d.cfg.APIKey)

		resp, err := d.client.Do(req)
		if err != nil {
			return urls, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return urls, fmt.Errorf("HTTP %d listing articles page %d", resp.StatusCode, page)
		}

		var articles []struct {
			CanonicalURL string `json:"canonical_url"`
			URL          string `json:"url"`
		}
		err = json.NewDecoder(resp.Body).Decode(&articles)
		resp.Body.Close()
		if err != nil {
			return urls, err
		}

		if len(articles) == 0 {
			break
		}
		for _, article := range articles {
			canonical := article.CanonicalURL
			if canonical == "" {
				canonical = article.URL
			}
			if canonical != "" {
				urls[NormalizeURL(canonical)] = true
			}
		}
	}

	log.Printf("devto: loaded %d remote canonical URLs", len(urls))
	return urls, nil
}
