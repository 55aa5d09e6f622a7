// Package notifier pushes changed URLs to search indexers. Both calls are
// fire-and-forget: outcomes are logged and never returned to the caller.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"syndicate-service/config"
)

type Notifier interface {
	Notify(ctx context.Context, pageURL string)
}

// IndexingNotifier submits a URL to the authenticated indexing endpoint
// with an URL_UPDATED change notification.
type IndexingNotifier struct {
	cfg    config.IndexingConfig
	client *http.Client
}

func NewIndexingNotifier(cfg config.IndexingConfig) *IndexingNotifier {
	return &IndexingNotifier{cfg: cfg, client: &http.Client{Timeout: 15 * time.Second}}
}

func (n *IndexingNotifier) Notify(ctx context.Context, pageURL string) {
	if n.cfg.ServiceToken == "" {
		return
	}

	body, _ := json.Marshal(map[string]string{
		"url":  pageURL,
		"type": "URL_UPDATED",
	})

	req, err := http.NewRequestWithContext(ctx, "POST", n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("indexing: building request failed: %v", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.ServiceToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("indexing: notify failed for %s: %v", pageURL, err)
		return
	}
	defer resp.Body.Close()

	log.Printf("indexing: notified %s, status %d", pageURL, resp.StatusCode)
}

// PingNotifier posts the changed URL to the public IndexNow endpoint. It
// only fires in the production environment so staging runs never ping
// public infrastructure.
type PingNotifier struct {
	cfg         config.PingConfig
	siteBaseURL string
	environment string
	client      *http.Client
}

func NewPingNotifier(cfg config.PingConfig, siteBaseURL, environment string) *PingNotifier {
	return &PingNotifier{
		cfg:         cfg,
		siteBaseURL: siteBaseURL,
		environment: environment,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *PingNotifier) Notify(ctx context.Context, pageURL string) {
	if n.environment != "production" || n.cfg.Key == "" {
		return
	}

	host := n.siteBaseURL
	if parsed, err := url.Parse(n.siteBaseURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	body, _ := json.Marshal(map[string]any{
		"host":        host,
		"key":         n.cfg.Key,
		"keyLocation": "https://" + host + "/" + n.cfg.Key + ".txt",
		"urlList":     []string{pageURL},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("indexnow: building request failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("indexnow: ping failed for %s: %v", pageURL, err)
		return
	}
	defer resp.Body.Close()

	log.Printf("indexnow: pinged %s, status %d", pageURL, resp.StatusCode)
}
