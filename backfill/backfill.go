// Package backfill drives the batch reconciliation pass: syndicate every
// historical article that is not yet mirrored on each platform, resumably.
package backfill

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"syndicate-service/checkpoint"
	"syndicate-service/metrics"
	"syndicate-service/model"
	"syndicate-service/notifier"
	"syndicate-service/publisher"
)

// Source enumerates the articles to reconcile, newest first.
type Source interface {
	ListPublished(ctx context.Context) ([]model.Article, error)
}

// Reconciler walks all published articles and invokes the adapters each
// one is still missing from. Progress is checkpointed per item, strictly
// after all of the item's attempts have settled.
type Reconciler struct {
	Source     Source
	Checkpoint *checkpoint.Log

	// Publishers run concurrently per item. Gated runs sequentially,
	// never closer together than MinInterval wall-clock time.
	Publishers []publisher.Publisher
	Gated      publisher.Publisher

	Notifiers []notifier.Notifier

	MinInterval time.Duration
	ItemDelay   time.Duration

	// Now and Sleep default to the real clock; tests inject fakes.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// loopState carries the mutable rate-limit bookkeeping through the run
// instead of hiding it in package globals.
type loopState struct {
	lastGatedCall time.Time
}

// Run executes one full reconciliation pass. It returns a non-nil error
// only for conditions that make the checkpoint untrustworthy (source or
// checkpoint I/O failures); individual adapter failures are swallowed.
func (r *Reconciler) Run(ctx context.Context) error {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	articles, err := r.Source.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("listing articles: %w", err)
	}
	log.Printf("backfill: %d published articles, %d already checkpointed",
		len(articles), r.Checkpoint.Len())

	history := r.fetchRemoteHistory(ctx)

	state := loopState{}
	processed := 0

	for _, article := range articles {
		if r.Checkpoint.Contains(article.ID) {
			metrics.BackfillItemsSkipped.Inc()
			continue
		}

		r.processItem(ctx, article, history, &state, now, sleep)

		if err := r.Checkpoint.Add(article.ID); err != nil {
			return fmt.Errorf("checkpointing %s: %w", article.ID, err)
		}
		metrics.BackfillItemsProcessed.Inc()
		processed++

		sleep(r.ItemDelay)
	}

	log.Printf("backfill: done, %d articles processed this run", processed)
	return nil
}

// fetchRemoteHistory prefetches the bulk dedup oracle for every platform
// that exposes one. A listing failure degrades to an empty set; the item
// loop then falls back to (possibly duplicate) submission.
func (r *Reconciler) fetchRemoteHistory(ctx context.Context) map[string]map[string]bool {
	history := make(map[string]map[string]bool)

	for _, p := range r.allPublishers() {
		lister, ok := p.(publisher.HistoryLister)
		if !ok || !p.Enabled() {
			continue
		}
		urls, err := lister.ListRemoteURLs(ctx)
		if err != nil {
			log.Printf("backfill: listing %s history failed: %v", p.Name(), err)
		}
		history[p.Name()] = urls
		log.Printf("backfill: %s history holds %d URLs", p.Name(), len(urls))
	}
	return history
}

func (r *Reconciler) allPublishers() []publisher.Publisher {
	all := make([]publisher.Publisher, 0, len(r.Publishers)+1)
	all = append(all, r.Publishers...)
	if r.Gated != nil {
		all = append(all, r.Gated)
	}
	return all
}

func (r *Reconciler) processItem(ctx context.Context, article model.Article,
	history map[string]map[string]bool, state *loopState,
	now func() time.Time, sleep func(time.Duration)) {

	content := model.Project(article)
	log.Printf("backfill: processing %s (%s)", article.ID, content.Link)

	var wg sync.WaitGroup

	for _, n := range r.Notifiers {
		wg.Add(1)
		go func(n notifier.Notifier) {
			defer wg.Done()
			n.Notify(ctx, content.Link)
		}(n)
	}

	for _, p := range r.Publishers {
		if r.shouldSkip(ctx, p, content, history) {
			continue
		}
		wg.Add(1)
		go func(p publisher.Publisher) {
			defer wg.Done()
			result := p.Publish(ctx, content)
			metrics.RecordPublish(result.Platform, result.OK, result.Skipped)
			if !result.OK {
				log.Printf("backfill: %s failed for %s: %s", result.Platform, content.Link, result.Error)
			}
		}(p)
	}

	// The gated platform runs on this goroutine so its minimum interval
	// is enforced across items regardless of how the others interleave.
	if r.Gated != nil && !r.shouldSkip(ctx, r.Gated, content, history) {
		if wait := r.MinInterval - now().Sub(state.lastGatedCall); wait > 0 && !state.lastGatedCall.IsZero() {
			log.Printf("backfill: waiting %v before calling %s", wait, r.Gated.Name())
			sleep(wait)
		}
		result := r.Gated.Publish(ctx, content)
		state.lastGatedCall = now()
		metrics.RecordPublish(result.Platform, result.OK, result.Skipped)
		if !result.OK {
			log.Printf("backfill: %s failed for %s: %s", result.Platform, content.Link, result.Error)
		}
	}

	wg.Wait()
}

// shouldSkip consults the prefetched history set first and falls back to
// a live existence query for platforms that support searching by URL.
func (r *Reconciler) shouldSkip(ctx context.Context, p publisher.Publisher,
	content model.PublishableContent, history map[string]map[string]bool) bool {

	if !p.Enabled() {
		return true
	}

	normalized := publisher.NormalizeURL(content.Link)
	if urls, ok := history[p.Name()]; ok {
		if urls[normalized] {
			metrics.DedupSkips.WithLabelValues(p.Name()).Inc()
			log.Printf("backfill: %s already has %s, skipping", p.Name(), content.Link)
			return true
		}
		return false
	}

	if deduper, ok := p.(publisher.Deduper); ok {
		exists, err := deduper.Exists(ctx, content.Link)
		if err != nil {
			log.Printf("backfill: %s dedup check failed for %s: %v", p.Name(), content.Link, err)
			return false
		}
		if exists {
			metrics.DedupSkips.WithLabelValues(p.Name()).Inc()
			log.Printf("backfill: %s already has %s, skipping", p.Name(), content.Link)
			return true
		}
	}
	return false
}
