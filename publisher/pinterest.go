package publisher

import (
	"bytes"
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

const pinterestDescriptionLimit = 500

// Pinterest creates pins with a cached OAuth2 access token. On a 401 the
// adapter exchanges its refresh token once and retries; a second failure
// is terminal for the attempt. The refreshed token lives in-process only.
type Pinterest struct {
	cfg         config.PinterestConfig
	accessToken string
	client      *http.Client
	baseURL     string
}

func NewPinterest(cfg config.PinterestConfig) *Pinterest {
	return &Pinterest{
		cfg:         cfg,
		accessToken: cfg.AccessToken,
		client:      newHTTPClient(),
		baseURL:     "https://api.pinterest.com",
	}
}

func (p *Pinterest) Name() string { return model.PlatformPinterest }

func (p *Pinterest) Enabled() bool {
	return p.cfg.AccessToken != "" && p.cfg.BoardID != ""
}

func (p *Pinterest) Publish(ctx context.Context, content model.PublishableContent) model.PublishResult {
	if !p.Enabled() {
		return model.Skip(p.Name(), "no credentials configured")
	}
	if content.Image == "" {
		return model.Skip(p.Name(), "no cover image")
	}

	id, status, err := p.createPin(ctx, content)
	if status == http.StatusUnauthorized {
		if refreshErr := p.refreshAccessToken(ctx); refreshErr != nil {
			log.Printf("pinterest: token refresh failed: %v", refreshErr)
			return model.Failure(p.Name(), refreshErr)
		}
		id, _, err = p.createPin(ctx, content)
	}
	if err != nil {
		log.Printf("pinterest: creating pin failed: %v", err)
		return model.Failure(p.Name(), err)
	}

	log.Printf("pinterest: created pin %s for %s", id, content.Link)
	return model.Success(p.Name(), id)
}

func (p *Pinterest) createPin(ctx context.Context, content model.PublishableContent) (string, int, error) {
	tags := BuildTags(content, 6)
	description := pinDescription(content, tags)

	body, _ := json.Marshal(map[string]any{
		"board_id":    p.cfg.BoardID,
		"title":       content.Title,
		"description": description,
		"link":        content.Link,
		"media_source": map[string]string{
			"source_type": "image_url",
			"url":         content.Image,
		},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v5/pins", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", resp.StatusCode, fmt.Errorf("HTTP %d creating pin", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", resp.StatusCode, err
	}
	return created.ID, resp.StatusCode, nil
}

func (p *Pinterest) refreshAccessToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", p.cfg.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v5/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d refreshing token", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return err
	}
	if token.AccessToken == "" {
		return fmt.Errorf("refresh response carried no access token")
	}

	p.accessToken = token.AccessToken
	log.Printf("pinterest: access token refreshed")
	return nil
}

// pinDescription fits description text plus hashtags into the 500
// character pin field, truncating the free text before dropping tags.
func pinDescription(content model.PublishableContent, tags []string) string {
	hashtags := make([]string, len(tags))
	for i, tag := range tags {
		hashtags[i] = "#" + tag
	}

	for {
		suffix := ""
		if len(hashtags) > 0 {
			suffix = "\n\n" + strings.Join(hashtags, " ")
		}

		budget := pinterestDescriptionLimit - len([]rune(suffix))
		if budget > 0 {
			description := []rune(content.Description)
			if len(description) > budget {
				description = append(description[:budget-1], '…')
			}
			return string(description) + suffix
		}
		hashtags = hashtags[:len(hashtags)-1]
	}
}
