package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"syndicate-service/config"
	"syndicate-service/model"
)

// Bluesky blob uploads are rejected above roughly 1MB; stay under it.
const blueskyBlobLimit = 950 * 1024

// Bluesky logs in per invocation (no session caching) and posts an
// external-embed record with the article's cover image as the thumbnail.
// An article without a cover image is skipped.
type Bluesky struct {
	cfg    config.BlueskyConfig
	client *http.Client
}

func NewBluesky(cfg config.BlueskyConfig) *Bluesky {
	return &Bluesky{cfg: cfg, client: newHTTPClient()}
}

func (b *Bluesky) Name() string { return model.PlatformBluesky }

func (b *Bluesky) Enabled() bool {
	return b.cfg.Identifier != "" && b.cfg.Password != ""
}

type blueskySession struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
}

func (b *Bluesky) Publish(ctx context.Context, content model.PublishableContent) model.PublishResult {
	if !b.Enabled() {
		return model.Skip(b.Name(), "no credentials configured")
	}
	if content.Image == "" {
		return model.Skip(b.Name(), "no cover image")
	}

	session, err := b.createSession(ctx)
	if err != nil {
		log.Printf("bluesky: login failed: %v", err)
		return model.Skip(b.Name(), "login failed")
	}

	data, _, err := FetchImage(ctx, b.client, content.Image)
	if err != nil {
		log.Printf("bluesky: fetching cover image failed: %v", err)
		return model.Failure(b.Name(), err)
	}
	data, contentType, err := EnsureUnder(data, blueskyBlobLimit)
	if err != nil {
		log.Printf("bluesky: downscaling cover image failed: %v", err)
		return model.Failure(b.Name(), err)
	}

	blob, err := b.uploadBlob(ctx, session, data, contentType)
	if err != nil {
		log.Printf("bluesky: uploading blob failed: %v", err)
		return model.Failure(b.Name(), err)
	}

	uri, err := b.createPost(ctx, session, content, blob)
	if err != nil {
		log.Printf("bluesky: creating post failed: %v", err)
		return model.Failure(b.Name(), err)
	}

	log.Printf("bluesky: posted %s for %s", uri, content.Link)
	return model.Success(b.Name(), uri)
}

func (b *Bluesky) createSession(ctx context.Context) (*blueskySession, error) {
	body, _ := json.Marshal(map[string]string{
		"identifier": b.cfg.Identifier,
		"password":   b.cfg.Password,
	})

	resp, err := b.post(ctx, "/xrpc/com.atproto.server.createSession", "", "application/json", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d creating session", resp.StatusCode)
	}

	var session blueskySession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *Bluesky) uploadBlob(ctx context.Context, session *blueskySession, data []byte, contentType string) (json.RawMessage, error) {
	resp, err := b.post(ctx, "/xrpc/com.atproto.repo.uploadBlob", session.AccessJwt, contentType, data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d uploading blob", resp.StatusCode)
	}

	var uploaded struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, err
	}
	return uploaded.Blob, nil
}

func (b *Bluesky) createPost(ctx context.Context, session *blueskySession, content model.PublishableContent, blob json.RawMessage) (string, error) {
	text := ComposeStatus(content, BuildTags(content, 4), 300)

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      text,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
		"embed": map[string]any{
			"$type": "app.bsky.embed.external",
			"external": map[string]any{
				"uri":         content.Link,
				"title":       content.Title,
				"description": content.Description,
				"thumb":       blob,
			},
		},
	}

	body, _ := json.Marshal(map[string]any{
		"repo":       session.DID,
		"collection": "app.bsky.feed.post",
		"record":     record,
	})

	resp, err := b.post(ctx, "/xrpc/com.atproto.repo.createRecord", session.AccessJwt, "application/json", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d creating record", resp.StatusCode)
	}

	var created struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.URI, nil
}

func (b *Bluesky) post(ctx context.Context, path, token, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "POST",
		strings.TrimRight(b.cfg.Host, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return b.client.Do(req)
}
