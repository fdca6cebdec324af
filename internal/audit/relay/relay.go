// Package relay publishes audit outbox entries to Kafka.
//
// The outbox table is written in the same transaction as the state change it
// describes; the relay drains it in append order and marks entries published
// once the broker acknowledges them. Crash between produce and mark replays
// the entry, so the stream is at-least-once and consumers must dedupe on the
// event ID.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"canopy/internal/audit"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// Outbox is the slice of the postgres store the relay needs.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxRow, error)
	MarkPublished(ctx context.Context, seqs []int64) error
}

// Relay drains the outbox into a Kafka topic.
type Relay struct {
	outbox   Outbox
	client   *kgo.Client
	topic    string
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// New connects to the brokers and ensures the topic exists.
func New(brokers []string, topic string, outbox Outbox, logger *slog.Logger) (*Relay, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	if err := ensureTopic(client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Relay{
		outbox:   outbox,
		client:   client,
		topic:    topic,
		logger:   logger,
		interval: defaultPollInterval,
		batch:    defaultBatchSize,
	}, nil
}

func ensureTopic(client *kgo.Client, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, 1, -1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				// Transient broker/DB trouble: log and retry next tick.
				// Entries stay unpublished until acknowledged.
				r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	for {
		rows, err := r.outbox.FetchUnpublished(ctx, r.batch)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		records := make([]*kgo.Record, len(rows))
		for i, row := range rows {
			records[i] = &kgo.Record{
				Topic: r.topic,
				Key:   []byte(row.AggregateID),
				Value: row.Payload,
			}
		}

		if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
			return fmt.Errorf("produce audit batch: %w", err)
		}

		seqs := make([]int64, len(rows))
		for i, row := range rows {
			seqs[i] = row.Seq
		}
		if err := r.outbox.MarkPublished(ctx, seqs); err != nil {
			return err
		}

		if len(rows) < r.batch {
			return nil
		}
	}
}

// Close flushes and releases the Kafka client.
func (r *Relay) Close() {
	r.client.Close()
}
