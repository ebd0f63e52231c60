// Package datasource describes the document store behind the listings.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// ErrUnsupportedQuery is returned for queries outside the two supported
// shapes: ordered pagination, or a single equality filter without ordering.
var ErrUnsupportedQuery = errors.New("unsupported query")

// Record is a stored document together with its server-assigned id.
type Record struct {
	DocID string
	Data  map[string]any
}

// Cursor marks the last document of a page. Value is the order field of that
// document; DocID breaks ties between equal values.
type Cursor struct {
	Value any
	DocID string
}

// Query describes a page request.
type Query struct {
	FilterField string
	FilterValue any
	OrderBy     string
	// Cursor resumes an ordered query after the given position.
	Cursor *Cursor
	Limit  int
}

// Page is a single query result.
type Page struct {
	Items []Record
	// Last is the cursor of the last returned document, nil for an empty page
	// or an unordered query.
	Last *Cursor
}

// SubscribeOptions configures a real-time subscription.
type SubscribeOptions struct {
	OrderBy string
}

// Unsubscribe stops a subscription. Calling it more than once is safe.
type Unsubscribe func()

// Source is the document store used by the listing pipeline.
type Source interface {
	QueryPage(ctx context.Context, collection string, q Query) (*Page, error)
	// GetDocument returns nil without error when the document does not exist.
	GetDocument(ctx context.Context, collection, id string) (*Record, error)
	SetDocument(ctx context.Context, collection, id string, data map[string]any) error
	// Subscribe calls onAdded for every document inserted after the call.
	Subscribe(ctx context.Context, collection string, opts SubscribeOptions, onAdded func(Record)) (Unsubscribe, error)
	CurrentUserID() (string, bool)
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that the query has one of the supported shapes.
func (q Query) Validate() error {
	if q.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrUnsupportedQuery, q.Limit)
	}
	if q.FilterField != "" && q.OrderBy != "" {
		return fmt.Errorf("%w: filtering by %q and ordering by %q needs a composite index", ErrUnsupportedQuery, q.FilterField, q.OrderBy)
	}
	if q.Cursor != nil && q.OrderBy == "" {
		return fmt.Errorf("%w: cursor requires ordering", ErrUnsupportedQuery)
	}
	for _, f := range []string{q.FilterField, q.OrderBy} {
		if f != "" && !fieldName.MatchString(f) {
			return fmt.Errorf("%w: invalid field name %q", ErrUnsupportedQuery, f)
		}
	}
	return nil
}

// CursorOf builds the cursor for a record of an ordered query.
func CursorOf(r Record, orderBy string) *Cursor {
	return &Cursor{Value: r.Data[orderBy], DocID: r.DocID}
}

// OnceUnsubscribe wraps fn so that only the first call has an effect.
func OnceUnsubscribe(fn func()) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(fn)
	}
}
