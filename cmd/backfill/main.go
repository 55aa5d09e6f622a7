// The backfill command runs one reconciliation pass over all published
// articles and exits. It is invoked out-of-band (manually or from a
// scheduled job), never from the live request path.
package main

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syndicate-service/backfill"
	"syndicate-service/checkpoint"
	"syndicate-service/config"
	"syndicate-service/metrics"
	"syndicate-service/notifier"
	"syndicate-service/publisher"
	"syndicate-service/store"
)

func main() {
	log.Println("Starting syndication backfill...")

	cfg := config.Load()
	metrics.Init("syndicate-backfill", "1.0", cfg.Environment)

	ctx := context.Background()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	articleStore := store.NewStore(mongoClient.Database("contentdb"))
	log.Println("Connected to MongoDB")

	ckpt, err := checkpoint.Open(cfg.CheckpointPath)
	if err != nil {
		log.Fatal("Failed to open checkpoint:", err)
	}
	log.Printf("Checkpoint loaded from %s, %d articles recorded", cfg.CheckpointPath, ckpt.Len())

	reconciler := &backfill.Reconciler{
		Source:     articleStore,
		Checkpoint: ckpt,
		Publishers: []publisher.Publisher{
			publisher.NewMastodon(cfg.Mastodon),
			publisher.NewBluesky(cfg.Bluesky),
			publisher.NewTumblr(cfg.Tumblr),
			publisher.NewDevto(cfg.Devto),
		},
		Gated: publisher.NewPinterest(cfg.Pinterest),
		Notifiers: []notifier.Notifier{
			notifier.NewIndexingNotifier(cfg.Indexing),
			notifier.NewPingNotifier(cfg.Ping, cfg.SiteBaseURL, cfg.Environment),
		},
		MinInterval: cfg.Pinterest.MinInterval,
		ItemDelay:   cfg.ItemDelay,
	}

	if err := reconciler.Run(ctx); err != nil {
		log.Fatal("Backfill failed:", err)
	}

	log.Println("Backfill complete")
}
