package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syndicate-service/api"
	"syndicate-service/config"
	"syndicate-service/fanout"
	"syndicate-service/metrics"
	"syndicate-service/store"
	"syndicate-service/worker"
)

func main() {
	log.Println("Starting Syndicate Service...")

	cfg := config.Load()
	metrics.Init("syndicate-service", "1.0", cfg.Environment)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())

	articleStore := store.NewStore(mongoClient.Database("contentdb"))
	log.Println("Connected to MongoDB")

	nc, err := nats.Connect(cfg.NATSUrl)
	if err != nil {
		log.Fatal("Failed to connect to NATS:", err)
	}
	defer nc.Close()
	log.Println("Connected to NATS")

	distributor := fanout.New(cfg)

	w, err := worker.NewWorker(nc, distributor)
	if err != nil {
		log.Fatal("Failed to create worker:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping...")
		cancel()
	}()

	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Worker stopped: %v", err)
		}
	}()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatal("Failed to get JetStream context:", err)
	}

	log.Println("Syndicate service is running...")
	if err := api.StartServer(cfg.ListenAddr, articleStore, js); err != nil {
		log.Fatal("API server failed:", err)
	}
}
