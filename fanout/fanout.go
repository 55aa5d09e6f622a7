// Package fanout dispatches one published article to every applicable
// downstream target concurrently, tolerating partial failure.
package fanout

import (
	"context"
	"log"
	"sync"

	"syndicate-service/config"
	"syndicate-service/metrics"
	"syndicate-service/model"
	"syndicate-service/notifier"
	"syndicate-service/publisher"
)

// Distributor runs the live per-publish fan-out. Pinterest and dev.to are
// deliberately absent from the live path; they are reached only through
// the backfill batch.
type Distributor struct {
	always    []publisher.Publisher
	imageOnly []publisher.Publisher
	notifiers []notifier.Notifier
}

func New(cfg *config.Config) *Distributor {
	return &Distributor{
		always: []publisher.Publisher{
			publisher.NewMastodon(cfg.Mastodon),
		},
		imageOnly: []publisher.Publisher{
			publisher.NewTumblr(cfg.Tumblr),
			publisher.NewBluesky(cfg.Bluesky),
		},
		notifiers: []notifier.Notifier{
			notifier.NewIndexingNotifier(cfg.Indexing),
			notifier.NewPingNotifier(cfg.Ping, cfg.SiteBaseURL, cfg.Environment),
		},
	}
}

// NewWith wires an explicit publisher/notifier set; tests use it.
func NewWith(always, imageOnly []publisher.Publisher, notifiers []notifier.Notifier) *Distributor {
	return &Distributor{always: always, imageOnly: imageOnly, notifiers: notifiers}
}

// Distribute fans one article out to the search notifiers and the live
// adapters, waits for everything to settle and returns the collected
// results. It never returns an error: every adapter swallows its own
// failures, and a panic in an adapter is caught here as a last resort.
func (d *Distributor) Distribute(ctx context.Context, article model.Article) []model.PublishResult {
	metrics.FanoutRuns.Inc()
	content := model.Project(article)

	targets := make([]publisher.Publisher, 0, len(d.always)+len(d.imageOnly))
	targets = append(targets, d.always...)
	if content.Image != "" {
		targets = append(targets, d.imageOnly...)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []model.PublishResult
	)

	for _, n := range d.notifiers {
		wg.Add(1)
		go func(n notifier.Notifier) {
			defer wg.Done()
			n.Notify(ctx, content.Link)
		}(n)
	}

	for _, p := range targets {
		wg.Add(1)
		go func(p publisher.Publisher) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("fanout: adapter %s panicked: %v", p.Name(), r)
					mu.Lock()
					results = append(results, model.PublishResult{Platform: p.Name(), Error: "adapter panic"})
					mu.Unlock()
				}
			}()

			result := p.Publish(ctx, content)
			metrics.RecordPublish(result.Platform, result.OK, result.Skipped)
			if !result.OK {
				log.Printf("fanout: %s failed for %s: %s", result.Platform, content.Link, result.Error)
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return results
}
