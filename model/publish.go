package model

import "time"

// Platform names as reported in results, logs and metrics.
const (
	PlatformMastodon  = "mastodon"
	PlatformBluesky   = "bluesky"
	PlatformTumblr    = "tumblr"
	PlatformPinterest = "pinterest"
	PlatformDevto     = "devto"
)

// PublishResult is the outcome of one article/platform attempt. Adapters
// always return one of these and never let an error escape their boundary.
type PublishResult struct {
	Platform string `json:"platform"`
	OK       bool   `json:"ok"`
	Skipped  bool   `json:"skipped,omitempty"`
	RemoteID string `json:"remoteId,omitempty"`
	Error    string `json:"error,omitempty"`
}

func Success(platform, remoteID string) PublishResult {
	return PublishResult{Platform: platform, OK: true, RemoteID: remoteID}
}

// Skip covers disabled adapters and adapters whose preconditions are not
// met (e.g. no cover image on an image-bearing platform). Not a failure.
func Skip(platform, reason string) PublishResult {
	return PublishResult{Platform: platform, OK: true, Skipped: true, Error: reason}
}

func Failure(platform string, err error) PublishResult {
	return PublishResult{Platform: platform, Error: err.Error()}
}

// PublishedEvent is the message published to NATS when the CMS write path
// publishes or updates an article.
type PublishedEvent struct {
	Article   Article   `json:"article"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}
