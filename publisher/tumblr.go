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
	"syndicate-service/oauth1"
)

// Tumblr posts a photo entry with caption and link, signing every request
// with OAuth 1.0a. A fresh nonce and timestamp are computed per call.
// Articles without a cover image are skipped.
type Tumblr struct {
	cfg     config.TumblrConfig
	signer  *oauth1.Signer
	client  *http.Client
	baseURL string
}

func NewTumblr(cfg config.TumblrConfig) *Tumblr {
	return &Tumblr{
		cfg: cfg,
		signer: &oauth1.Signer{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			Token:          cfg.Token,
			TokenSecret:    cfg.TokenSecret,
		},
		client:  newHTTPClient(),
		baseURL: "https://api.tumblr.com",
	}
}

func (t *Tumblr) Name() string { return model.PlatformTumblr }

func (t *Tumblr) Enabled() bool {
	return t.cfg.ConsumerKey != "" && t.cfg.ConsumerSecret != "" &&
		t.cfg.Token != "" && t.cfg.TokenSecret != "" && t.cfg.Blog != ""
}

func (t *Tumblr) Publish(ctx context.Context, content model.PublishableContent) model.PublishResult {
	if !t.Enabled() {
		return model.Skip(t.Name(), "no credentials configured")
	}
	if content.Image == "" {
		return model.Skip(t.Name(), "no cover image")
	}

	tags := BuildTags(content, 10)
	for _, kw := range ExtractKeywords(content.Title+" "+content.Description, 5) {
		if len(tags) >= 15 {
			break
		}
		if !containsFold(tags, kw) {
			tags = append(tags, kw)
		}
	}

	caption := content.Title
	if content.Description != "" {
		caption += "\n\n" + content.Description
	}
	caption += "\n\n" + content.Link

	endpoint := fmt.Sprintf("%s/v2/blog/%s/post", t.baseURL, t.cfg.Blog)
	params := map[string]string{
		"type":    "photo",
		"source":  content.Image,
		"caption": caption,
		"link":    content.Link,
		"tags":    strings.Join(tags, ","),
	}

	signed := t.signer.SignedParams("POST", endpoint, params)
	form := url.Values{}
	for k, v := range signed {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("tumblr: building request failed: %v", err)
		return model.Failure(t.Name(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		log.Printf("tumblr: posting failed: %v", err)
		return model.Failure(t.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := fmt.Errorf("HTTP %d creating post", resp.StatusCode)
		log.Printf("tumblr: %v", err)
		return model.Failure(t.Name(), err)
	}

	var created struct {
		Response struct {
			IDString string `json:"id_string"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Printf("tumblr: decoding response failed: %v", err)
		return model.Failure(t.Name(), err)
	}

	log.Printf("tumblr: posted %s for %s", created.Response.IDString, content.Link)
	return model.Success(t.Name(), created.Response.IDString)
}

func containsFold(tags []string, candidate string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, candidate) {
			return true
		}
	}
	return false
}
