// Package sqlite is an embedded document store on top of SQLite JSON
// functions.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/neetwise/listing/internal/datasource"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, doc_id)
);
`

// Store keeps documents in a single SQLite table.
type Store struct {
	db     *sql.DB
	path   string
	hub    datasource.Hub
	userID string
}

var _ datasource.Source = (*Store)(nil)

// Open creates or opens the database at path. Use ":memory:" for a
// throwaway store.
func Open(ctx context.Context, path, userID string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, path: path, userID: userID}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) QueryPage(ctx context.Context, collection string, q datasource.Query) (*datasource.Page, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query, args := buildQuery(collection, q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s page: %w", collection, err)
	}
	defer rows.Close()

	page := &datasource.Page{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}

		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, fmt.Errorf("decode %s document %s: %w", collection, id, err)
		}
		page.Items = append(page.Items, datasource.Record{DocID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s page: %w", collection, err)
	}

	if q.OrderBy != "" && len(page.Items) > 0 {
		page.Last = datasource.CursorOf(page.Items[len(page.Items)-1], q.OrderBy)
	}

	return page, nil
}

// buildQuery renders q as SQL. Field names are validated by Query.Validate
// and only ever bound as JSON paths. Ordered queries skip documents whose
// order field is missing or null, so a cursor value is never NULL.
func buildQuery(collection string, q datasource.Query) (string, []any) {
	if q.FilterField != "" {
		return `SELECT doc_id, data FROM documents
WHERE collection = ? AND json_extract(data, ?) = ?
ORDER BY rowid
LIMIT ?`, []any{collection, path(q.FilterField), q.FilterValue, q.Limit}
	}

	field := path(q.OrderBy)
	if q.Cursor == nil {
		return `SELECT doc_id, data FROM documents
WHERE collection = ? AND COALESCE(json_type(data, ?), 'null') <> 'null'
ORDER BY json_extract(data, ?), doc_id
LIMIT ?`, []any{collection, field, field, q.Limit}
	}

	return `SELECT doc_id, data FROM documents
WHERE collection = ? AND COALESCE(json_type(data, ?), 'null') <> 'null'
  AND (json_extract(data, ?) > ? OR (json_extract(data, ?) = ? AND doc_id > ?))
ORDER BY json_extract(data, ?), doc_id
LIMIT ?`, []any{collection, field, field, q.Cursor.Value, field, q.Cursor.Value, q.Cursor.DocID, field, q.Limit}
}

func path(field string) string {
	return "$." + field
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*datasource.Record, error) {
	const q = `SELECT data FROM documents WHERE collection = ? AND doc_id = ?`

	var raw string
	err := s.db.QueryRowContext(ctx, q, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s document %s: %w", collection, id, err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decode %s document %s: %w", collection, id, err)
	}

	return &datasource.Record{DocID: id, Data: data}, nil
}

// SetDocument creates or replaces a document. An empty id generates one.
// Subscribers are notified of creations only.
func (s *Store) SetDocument(ctx context.Context, collection, id string, data map[string]any) error {
	if id == "" {
		id = uuid.NewString()
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s document %s: %w", collection, id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	const qExists = `SELECT EXISTS(SELECT 1 FROM documents WHERE collection = ? AND doc_id = ?)`
	if err := tx.QueryRowContext(ctx, qExists, collection, id).Scan(&exists); err != nil {
		return fmt.Errorf("check %s document %s: %w", collection, id, err)
	}

	const qUpsert = `INSERT INTO documents (collection, doc_id, data) VALUES (?, ?, ?)
ON CONFLICT (collection, doc_id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, qUpsert, collection, id, string(raw)); err != nil {
		return fmt.Errorf("set %s document %s: %w", collection, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s document %s: %w", collection, id, err)
	}

	if !exists {
		// Publish what a reader would get back: JSON-decoded values.
		var stored map[string]any
		if err := json.Unmarshal(raw, &stored); err == nil {
			s.hub.Publish(collection, datasource.Record{DocID: id, Data: stored})
		}
	}

	return nil
}

func (s *Store) Subscribe(_ context.Context, collection string, _ datasource.SubscribeOptions, onAdded func(datasource.Record)) (datasource.Unsubscribe, error) {
	return s.hub.Subscribe(collection, onAdded), nil
}

func (s *Store) CurrentUserID() (string, bool) {
	return s.userID, s.userID != ""
}
