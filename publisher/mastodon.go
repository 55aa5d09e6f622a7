package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"syndicate-service/config"
	"syndicate-service/model"
)

const mastodonStatusLimit = 500

// Mastodon posts a status with hashtags through a long-lived bearer token.
type Mastodon struct {
	cfg    config.MastodonConfig
	client *http.Client
}

func NewMastodon(cfg config.MastodonConfig) *Mastodon {
	return &Mastodon{cfg: cfg, client: newHTTPClient()}
}

func (m *Mastodon) Name() string { return model.PlatformMastodon }

func (m *Mastodon) Enabled() bool {
	return m.cfg.AccessToken != "" && m.cfg.Server != ""
}

func (m *Mastodon) Publish(ctx context.Context, content model.PublishableContent) model.PublishResult {
	if !m.Enabled() {
		return model.Skip(m.Name(), "no access token configured")
	}

	tags := BuildTags(content, 8)
	status := ComposeStatus(content, tags, mastodonStatusLimit)

	form := url.Values{}
	form.Set("status", status)
	form.Set("visibility", "public")

	req, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(m.cfg.Server, "/")+"/api/v1/statuses",
		strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("mastodon: building request failed: %v", err)
		return model.Failure(m.Name(), err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		log.Printf("mastodon: posting status failed: %v", err)
		return model.Failure(m.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d posting status", resp.StatusCode)
		log.Printf("mastodon: %v", err)
		return model.Failure(m.Name(), err)
	}

	var posted struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&posted); err != nil {
		log.Printf("mastodon: decoding response failed: %v", err)
		return model.Failure(m.Name(), err)
	}

	log.Printf("mastodon: posted status %s for %s", posted.ID, content.Link)
	return model.Success(m.Name(), posted.ID)
}

// Exists searches the instance for statuses referencing the canonical URL.
// Mastodon resolves URL queries to statuses that linked the page, which
// makes the search endpoint usable as a live dedup check.
func (m *Mastodon) Exists(ctx context.Context, canonicalURL string) (bool, error) {
	if !m.Enabled() {
		return false, nil
	}

	q := url.Values{}
	q.Set("q", canonicalURL)
	q.Set("type", "statuses")
	q.Set("resolve", "false")

	req, err := http.NewRequestWithContext(ctx, "GET",
		strings.TrimRight(m.cfg.Server, "/")+"/api/v2/search?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.AccessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("HTTP %d searching statuses", resp.StatusCode)
	}

	var results struct {
		Statuses []struct {
			Content string `json:"content"`
		} `json:"statuses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return false, err
	}

	needle := NormalizeURL(canonicalURL)
	for _, status := range results.Statuses {
		if strings.Contains(strings.ToLower(status.Content), needle) {
			return true, nil
		}
	}
	return false, nil
}
