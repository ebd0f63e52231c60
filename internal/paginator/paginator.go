// Package paginator implements the page and cursor protocol of listings on
// top of a datasource.Source.
package paginator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/datasource"
)

// DefaultFilteredPageSize is the size of the single page fetched while a type
// filter is active.
const DefaultFilteredPageSize = 50

// Page is the result of a single fetch.
type Page struct {
	Items []catalog.Candidate
	// NextCursor resumes the listing after this page. Nil means there is
	// nothing more to fetch.
	NextCursor *datasource.Cursor
	// Failed is set when the data source errored and the page was degraded
	// to an empty one.
	Failed bool
}

// Paginator fetches listing pages.
type Paginator struct {
	source           datasource.Source
	listing          catalog.Listing
	filteredPageSize int
	logger           *zap.Logger
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithFilteredPageSize overrides DefaultFilteredPageSize.
func WithFilteredPageSize(n int) Option {
	return func(p *Paginator) {
		if n > 0 {
			p.filteredPageSize = n
		}
	}
}

// WithLogger sets the logger used to report degraded pages.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Paginator) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a paginator for listing over source.
func New(source datasource.Source, listing catalog.Listing, opts ...Option) (*Paginator, error) {
	if source == nil {
		return nil, errors.New("data source is required")
	}
	if listing.Collection == "" || listing.OrderBy == "" || listing.FilterField == "" {
		return nil, fmt.Errorf("listing %q is incomplete", listing.Name)
	}

	p := &Paginator{
		source:           source,
		listing:          listing,
		filteredPageSize: DefaultFilteredPageSize,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.With(zap.String("collection", listing.Collection))

	return p, nil
}

// Listing returns the listing the paginator serves.
func (p *Paginator) Listing() catalog.Listing {
	return p.listing
}

// FetchPage fetches one page. With the "All" type filter the listing is
// ordered server side and resumes after cursor. Any other type filter yields
// a single page sorted by name with no next cursor.
func (p *Paginator) FetchPage(ctx context.Context, pageSize int, cursor *datasource.Cursor, typeFilter string) Page {
	if typeFilter == "" || typeFilter == catalog.AllTypes {
		return p.fetchOrdered(ctx, pageSize, cursor)
	}
	return p.fetchFiltered(ctx, typeFilter)
}

func (p *Paginator) fetchOrdered(ctx context.Context, pageSize int, cursor *datasource.Cursor) Page {
	raw, err := p.source.QueryPage(ctx, p.listing.Collection, datasource.Query{
		OrderBy: p.listing.OrderBy,
		Cursor:  cursor,
		Limit:   pageSize,
	})
	if err != nil {
		p.logger.Error("fetching page failed",
			zap.Int("page_size", pageSize),
			zap.Bool("has_cursor", cursor != nil),
			zap.Error(err),
		)
		return Page{Failed: true}
	}

	page := Page{Items: p.decode(raw.Items)}
	if len(raw.Items) >= pageSize {
		page.NextCursor = raw.Last
	}

	return page
}

func (p *Paginator) fetchFiltered(ctx context.Context, typeFilter string) Page {
	raw, err := p.source.QueryPage(ctx, p.listing.Collection, datasource.Query{
		FilterField: p.listing.FilterField,
		FilterValue: typeFilter,
		Limit:       p.filteredPageSize,
	})
	if err != nil {
		p.logger.Error("fetching filtered page failed",
			zap.String("type_filter", typeFilter),
			zap.Error(err),
		)
		return Page{Failed: true}
	}

	items := p.decode(raw.Items)
	SortByName(items, p.listing)

	return Page{Items: items}
}

func (p *Paginator) decode(records []datasource.Record) []catalog.Candidate {
	items := make([]catalog.Candidate, 0, len(records))
	for _, r := range records {
		c, err := catalog.FromRecord(r.DocID, r.Data)
		if err != nil {
			// Keep it: it still has an id and raw fields to display.
			p.logger.Warn("decoding document", zap.String("doc_id", r.DocID), zap.Error(err))
		}
		items = append(items, c)
	}
	return items
}

// SortByName orders items by the listing name field, case-insensitively.
// Candidates without a name sort first.
func SortByName(items []catalog.Candidate, listing catalog.Listing) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(listing.NameOf(items[i])) < strings.ToLower(listing.NameOf(items[j]))
	})
}

// HasMore reports whether another unfiltered page may exist after page.
func HasMore(page Page, pageSize int, typeFilter string) bool {
	if typeFilter != "" && typeFilter != catalog.AllTypes {
		return false
	}
	return len(page.Items) == pageSize
}
