// Package feed publishes committed ledger events and streams them to websocket clients
package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/kindredkeeper/keeper/core"
)

var tracer = otel.Tracer("feed")

type service struct {
	rdb *redis.Client
}

// NewService creates a new feed service
func NewService(rdb *redis.Client) core.FeedService {
	return &service{rdb}
}

// Publish sends an event to every subscriber
func (s *service) Publish(ctx context.Context, event core.LedgerEvent) error {
	ctx, span := tracer.Start(ctx, "Feed.Service.Publish")
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = s.rdb.Publish(ctx, core.LedgerChannel, payload).Err()
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Subscribe returns a channel of ledger events. The returned func stops the subscription.
func (s *service) Subscribe(ctx context.Context) (<-chan core.LedgerEvent, func(), error) {
	ctx, span := tracer.Start(ctx, "Feed.Service.Subscribe")
	defer span.End()

	pubsub := s.rdb.Subscribe(ctx, core.LedgerChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		span.RecordError(err)
		pubsub.Close()
		return nil, nil, err
	}

	events := make(chan core.LedgerEvent)
	done := make(chan struct{})

	go func() {
		defer close(events)
		messages := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event core.LedgerEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Error(
						"failed to decode ledger event",
						slog.String("error", err.Error()),
					)
					continue
				}
				select {
				case events <- event:
				case <-done:
					return
				}
			}
		}
	}()

	stop := func() {
		close(done)
		pubsub.Close()
	}

	return events, stop, nil
}
