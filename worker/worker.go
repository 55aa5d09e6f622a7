// Package worker consumes content.published events and runs the fan-out
// in the background relative to the CMS publish action that emitted them.
package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"syndicate-service/metrics"
	"syndicate-service/model"
)

const (
	StreamName       = "SYNDICATE"
	SubjectPublished = "content.published"
)

// Distributor is the seam to the fan-out orchestrator.
type Distributor interface {
	Distribute(ctx context.Context, article model.Article) []model.PublishResult
}

type Worker struct {
	nc          *nats.Conn
	js          nats.JetStreamContext
	distributor Distributor
}

func NewWorker(nc *nats.Conn, distributor Distributor) (*Worker, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}

	if err := setupStreams(js); err != nil {
		return nil, err
	}

	return &Worker{nc: nc, js: js, distributor: distributor}, nil
}

func (w *Worker) Start(ctx context.Context) error {
	_, err := w.js.Subscribe(SubjectPublished, func(msg *nats.Msg) {
		w.handlePublished(ctx, msg)
	},
		nats.Durable("syndicate-workers"),
		nats.ManualAck(),
		nats.MaxAckPending(1),
	)
	if err != nil {
		return err
	}

	log.Printf("Subscribed to %s", SubjectPublished)

	<-ctx.Done()
	return ctx.Err()
}

func (w *Worker) handlePublished(ctx context.Context, msg *nats.Msg) {
	event, err := DecodeEvent(msg.Data)
	if err != nil {
		log.Printf("Failed to unmarshal published event: %v", err)
		metrics.NatsMessagesReceived.WithLabelValues(SubjectPublished, "error").Inc()
		// Poison message; acking avoids redelivery loops.
		msg.Ack()
		return
	}
	metrics.NatsMessagesReceived.WithLabelValues(SubjectPublished, "ok").Inc()

	log.Printf("Distributing %s (%s)", event.Article.ID, event.Article.URL)
	results := w.distributor.Distribute(ctx, event.Article)

	for _, result := range results {
		if !result.OK {
			log.Printf("Distribution to %s failed for %s: %s",
				result.Platform, event.Article.URL, result.Error)
		}
	}

	msg.Ack()
}

// DecodeEvent parses a published-event payload.
func DecodeEvent(data []byte) (*model.PublishedEvent, error) {
	var event model.PublishedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// PublishEvent emits a content.published event for an article. The CMS
// write path and the manual trigger endpoint both go through here.
func PublishEvent(js nats.JetStreamContext, article model.Article) error {
	event := model.PublishedEvent{
		Article:   article,
		Timestamp: time.Now(),
		Source:    "syndicate-service",
		Version:   "1.0",
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := js.Publish(SubjectPublished, data); err != nil {
		metrics.NatsMessagesPublished.WithLabelValues(SubjectPublished, "error").Inc()
		return err
	}
	metrics.NatsMessagesPublished.WithLabelValues(SubjectPublished, "ok").Inc()

	log.Printf("Published event for article %s", article.ID)
	return nil
}

func setupStreams(js nats.JetStreamContext) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"content.>"},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		return err
	}

	log.Println("NATS streams configured successfully")
	return nil
}
