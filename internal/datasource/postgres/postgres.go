// Package postgres stores listing documents in a PostgreSQL jsonb table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neetwise/listing/internal/datasource"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        BIGSERIAL,
	collection TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, doc_id)
);
`

// Feed carries insert notifications between processes.
type Feed interface {
	Publish(ctx context.Context, collection string, r datasource.Record) error
	Subscribe(ctx context.Context, collection string, onAdded func(datasource.Record)) (datasource.Unsubscribe, error)
}

// Store is a datasource.Source backed by PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	feed   Feed
	hub    datasource.Hub
	userID string
}

var _ datasource.Source = (*Store)(nil)

// Connect opens a pool for databaseURL and makes sure the schema exists.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return pool, nil
}

// New builds a store on pool. Without a feed, insert notifications only reach
// subscribers of this process.
func New(pool *pgxpool.Pool, feed Feed, userID string) *Store {
	return &Store{pool: pool, feed: feed, userID: userID}
}

func (s *Store) QueryPage(ctx context.Context, collection string, q datasource.Query) (*datasource.Page, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sql, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s page: %w", collection, err)
	}
	defer rows.Close()

	page := &datasource.Page{}
	for rows.Next() {
		var r datasource.Record
		if err := rows.Scan(&r.DocID, &r.Data); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		page.Items = append(page.Items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s page: %w", collection, err)
	}

	if q.OrderBy != "" && len(page.Items) > 0 {
		page.Last = datasource.CursorOf(page.Items[len(page.Items)-1], q.OrderBy)
	}

	return page, nil
}

// buildQuery renders q as SQL. jsonb ordering is used for both the sort and
// the keyset comparison, so cursors resume exactly where a page ended.
// Documents with a missing or null order field are skipped.
func buildQuery(collection string, q datasource.Query) (string, []any, error) {
	if q.FilterField != "" {
		value, err := json.Marshal(q.FilterValue)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter value: %w", err)
		}
		return `SELECT doc_id, data FROM documents
WHERE collection = $1 AND data -> $2 = $3::jsonb
ORDER BY seq
LIMIT $4`, []any{collection, q.FilterField, string(value), q.Limit}, nil
	}

	if q.Cursor == nil {
		return `SELECT doc_id, data FROM documents
WHERE collection = $1 AND jsonb_typeof(data -> $2) <> 'null'
ORDER BY data -> $2, doc_id
LIMIT $3`, []any{collection, q.OrderBy, q.Limit}, nil
	}

	value, err := json.Marshal(q.Cursor.Value)
	if err != nil {
		return "", nil, fmt.Errorf("encode cursor value: %w", err)
	}

	return `SELECT doc_id, data FROM documents
WHERE collection = $1 AND jsonb_typeof(data -> $2) <> 'null'
  AND (data -> $2, doc_id) > ($3::jsonb, $4)
ORDER BY data -> $2, doc_id
LIMIT $5`, []any{collection, q.OrderBy, string(value), q.Cursor.DocID, q.Limit}, nil
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*datasource.Record, error) {
	const q = `SELECT data FROM documents WHERE collection = $1 AND doc_id = $2`

	r := &datasource.Record{DocID: id}
	err := s.pool.QueryRow(ctx, q, collection, id).Scan(&r.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s document %s: %w", collection, id, err)
	}

	return r, nil
}

// SetDocument creates or replaces a document. An empty id generates one.
func (s *Store) SetDocument(ctx context.Context, collection, id string, data map[string]any) error {
	if id == "" {
		id = uuid.NewString()
	}

	const q = `INSERT INTO documents (collection, doc_id, data) VALUES ($1, $2, $3)
ON CONFLICT (collection, doc_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
RETURNING (xmax = 0) AS inserted`

	var inserted bool
	if err := s.pool.QueryRow(ctx, q, collection, id, data).Scan(&inserted); err != nil {
		return fmt.Errorf("set %s document %s: %w", collection, id, err)
	}
	if !inserted {
		return nil
	}

	r := datasource.Record{DocID: id, Data: data}
	if s.feed == nil {
		s.hub.Publish(collection, r)
		return nil
	}

	if err := s.feed.Publish(ctx, collection, r); err != nil {
		return fmt.Errorf("announce %s document %s: %w", collection, id, err)
	}

	return nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, _ datasource.SubscribeOptions, onAdded func(datasource.Record)) (datasource.Unsubscribe, error) {
	if s.feed == nil {
		return s.hub.Subscribe(collection, onAdded), nil
	}
	return s.feed.Subscribe(ctx, collection, onAdded)
}

func (s *Store) CurrentUserID() (string, bool) {
	return s.userID, s.userID != ""
}
