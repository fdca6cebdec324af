package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	txcontext "canopy/pkg/platform/tx"
)

// PostgresStore implements Store using the transactional outbox pattern.
// Events are written to the outbox table in the same transaction as the state
// change and published to Kafka by the relay. Kafka is the stream external
// indexers replay.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// payload is the JSON structure published to Kafka. Field names are part of
// the consumer contract; do not rename them.
type payload struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Action      string `json:"action"`
	ClaimID     string `json:"claim_id,omitempty"`
	ProfileRef  string `json:"profile_ref,omitempty"`
	Validator   string `json:"validator,omitempty"`
	Score       int    `json:"score,omitempty"`
	Category    string `json:"category,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Methodology string `json:"methodology,omitempty"`
	Actor       string `json:"actor,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// Append writes an event to the outbox table for Kafka publishing.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := uuid.New()

	body, err := json.Marshal(payload{
		ID:          eventID.String(),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		Action:      string(event.Action),
		ClaimID:     event.ClaimID,
		ProfileRef:  event.ProfileRef,
		Validator:   event.Validator,
		Score:       event.Score,
		Category:    event.Category,
		Unit:        event.Unit,
		Methodology: event.Methodology,
		Actor:       event.Actor,
		RequestID:   event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// The aggregate key groups a claim's events onto one Kafka partition so
	// consumers see them in order. Policy events key on the category.
	aggregateID := event.ClaimID
	if aggregateID == "" {
		aggregateID = event.Category
	}

	query := `
		INSERT INTO audit_outbox (id, aggregate_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID,
		aggregateID,
		string(event.Action),
		body,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListRecent returns the N most recently appended events, oldest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT payload FROM (
			SELECT payload, seq FROM audit_outbox
			ORDER BY seq DESC
			LIMIT $1
		) tail
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit outbox: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event, err := decodePayload(body)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func decodePayload(body []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	return Event{
		Timestamp:   ts,
		Action:      Action(p.Action),
		ClaimID:     p.ClaimID,
		ProfileRef:  p.ProfileRef,
		Validator:   p.Validator,
		Score:       p.Score,
		Category:    p.Category,
		Unit:        p.Unit,
		Methodology: p.Methodology,
		Actor:       p.Actor,
		RequestID:   p.RequestID,
	}, nil
}

// OutboxRow is one unpublished outbox entry for the relay.
type OutboxRow struct {
	Seq         int64
	ID          uuid.UUID
	AggregateID string
	Payload     []byte
}

// FetchUnpublished returns up to limit unpublished entries in append order.
func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	query := `
		SELECT seq, id, aggregate_id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY seq ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox entries: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.Seq, &row.ID, &row.AggregateID, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return out, nil
}

// MarkPublished stamps entries after the broker acknowledged them.
func (s *PostgresStore) MarkPublished(ctx context.Context, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}
	query := `
		UPDATE audit_outbox SET published_at = $1
		WHERE seq = ANY($2)
	`
	if _, err := s.db.ExecContext(ctx, query, time.Now(), pq.Array(seqs)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
