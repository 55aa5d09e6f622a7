// Package publisher holds one adapter per syndication target. Adapters
// swallow their own errors and report outcomes as model.PublishResult so
// one platform's failure can never block the others.
package publisher

import (
	"context"
	"net/http"
	"strings"
	"time"

	"syndicate-service/model"
)

// Publisher is the contract every platform adapter satisfies.
type Publisher interface {
	// Name returns the platform name used in results, logs and metrics.
	Name() string

	// Enabled reports whether credentials for the platform are configured.
	// Disabled adapters publish as a silent no-op.
	Enabled() bool

	// Publish submits one piece of content. It never returns an error;
	// failures are logged locally and surfaced in the result.
	Publish(ctx context.Context, content model.PublishableContent) model.PublishResult
}

// Deduper is implemented by adapters that can answer "does this canonical
// URL already exist remotely?" with a live search query.
type Deduper interface {
	Exists(ctx context.Context, canonicalURL string) (bool, error)
}

// HistoryLister is implemented by adapters whose platform exposes a
// listable account history, usable as a bulk dedup oracle.
type HistoryLister interface {
	ListRemoteURLs(ctx context.Context) (map[string]bool, error)
}

// NormalizeURL canonicalizes a URL for dedup comparison: lowercased with
// any trailing slash stripped.
func NormalizeURL(raw string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
