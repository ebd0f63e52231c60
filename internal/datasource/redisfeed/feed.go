// Package redisfeed carries document insertions between processes over Redis
// pub/sub.
package redisfeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/datasource"
)

const channelPrefix = "EVENT_DOCUMENT_ADDED:"

// Feed publishes and receives "document added" events.
type Feed struct {
	client *redis.Client
	logger *zap.Logger
}

type message struct {
	DocID string         `json:"docId"`
	Data  map[string]any `json:"data"`
}

// Connect parses redisURL and verifies connectivity.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func New(client *redis.Client, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{client: client, logger: logger}
}

// Publish announces a newly inserted document.
func (f *Feed) Publish(ctx context.Context, collection string, r datasource.Record) error {
	payload, err := encode(r)
	if err != nil {
		return err
	}

	if err := f.client.Publish(ctx, Channel(collection), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", Channel(collection), err)
	}

	return nil
}

// Subscribe calls onAdded for every document announced on collection until
// the returned function is called.
func (f *Feed) Subscribe(ctx context.Context, collection string, onAdded func(datasource.Record)) (datasource.Unsubscribe, error) {
	channel := Channel(collection)
	sub := f.client.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so no insert is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			r, err := decode(msg.Payload)
			if err != nil {
				f.logger.Warn("dropping malformed document event",
					zap.String("channel", channel),
					zap.Error(err),
				)
				continue
			}
			onAdded(r)
		}
	}()

	return datasource.OnceUnsubscribe(func() {
		if err := sub.Close(); err != nil {
			f.logger.Debug("closing subscription", zap.String("channel", channel), zap.Error(err))
		}
		<-done
	}), nil
}

// Channel returns the pub/sub channel of a collection.
func Channel(collection string) string {
	return channelPrefix + collection
}

func encode(r datasource.Record) (string, error) {
	payload, err := json.Marshal(message{DocID: r.DocID, Data: r.Data})
	if err != nil {
		return "", fmt.Errorf("encode document event %s: %w", r.DocID, err)
	}
	return string(payload), nil
}

func decode(payload string) (datasource.Record, error) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return datasource.Record{}, fmt.Errorf("decode document event: %w", err)
	}
	if m.DocID == "" {
		return datasource.Record{}, fmt.Errorf("decode document event: missing docId")
	}
	return datasource.Record{DocID: m.DocID, Data: m.Data}, nil
}
