// Package listing drives a paginated, eligibility-filtered listing session
// and merges real-time arrivals into it.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/datasource"
	"github.com/neetwise/listing/internal/filtering"
	"github.com/neetwise/listing/internal/logger"
	"github.com/neetwise/listing/internal/merge"
	"github.com/neetwise/listing/internal/paginator"
	"github.com/neetwise/listing/internal/utils"
)

const (
	DefaultPageSize        = 15
	DefaultLoadMoreDelay   = 500 * time.Millisecond
	DefaultNotificationTTL = 3 * time.Second
)

// PageFetcher is implemented by *paginator.Paginator.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageSize int, cursor *datasource.Cursor, typeFilter string) paginator.Page
}

// ProfileFetcher is implemented by *profile.Store.
type ProfileFetcher interface {
	Fetch(ctx context.Context) (*catalog.UserProfile, error)
}

// Subscriber is implemented by every datasource.Source.
type Subscriber interface {
	Subscribe(ctx context.Context, collection string, opts datasource.SubscribeOptions, onAdded func(datasource.Record)) (datasource.Unsubscribe, error)
}

// Config holds the tunables of a listing session.
type Config struct {
	Listing         catalog.Listing
	PageSize        int
	LoadMoreDelay   time.Duration
	NotificationTTL time.Duration

	// TypeFilter is the type filter of the first page. Empty means "All".
	TypeFilter string
}

// DefaultConfig returns the configuration of the mobile listing screens.
func DefaultConfig(l catalog.Listing) Config {
	return Config{
		Listing:         l,
		PageSize:        DefaultPageSize,
		LoadMoreDelay:   DefaultLoadMoreDelay,
		NotificationTTL: DefaultNotificationTTL,
	}
}

// Deps are the collaborators of a Controller. Only Pages is required.
type Deps struct {
	Pages    PageFetcher
	Profiles ProfileFetcher
	Arrivals Subscriber
	// Filters run over every fetched page and every arrival. Defaults to
	// the eligibility filter.
	Filters []filtering.Filter
	Logger  *zap.Logger
	// OnNotify is called outside the controller lock for every notification.
	OnNotify func(Notification)
	Now      func() time.Time
}

// Controller owns the state of one listing session. It is safe for
// concurrent use; every transition is applied atomically.
type Controller struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger

	mu          sync.Mutex
	state       State
	epoch       uint64
	closed      bool
	unsubscribe datasource.Unsubscribe
}

// New creates a controller in the idle state.
func New(cfg Config, deps Deps) (*Controller, error) {
	if deps.Pages == nil {
		return nil, errors.New("page fetcher is required")
	}
	if cfg.Listing.Collection == "" {
		return nil, errors.New("listing is required")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.LoadMoreDelay < 0 || cfg.NotificationTTL < 0 {
		return nil, errors.New("durations must not be negative")
	}
	if deps.Filters == nil {
		deps.Filters = []filtering.Filter{filtering.NewEligibility()}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	typeFilter := cfg.TypeFilter
	if typeFilter == "" {
		typeFilter = catalog.AllTypes
	}

	return &Controller{
		cfg:    cfg,
		deps:   deps,
		logger: logger.WithFields(deps.Logger, logger.ListingFields(cfg.Listing.Name, cfg.Listing.Collection)...),
		state:  State{TypeFilter: typeFilter},
	}, nil
}

// Init loads the profile, subscribes to arrivals and loads the first page.
// The first page is not requested before the profile fetch settles.
func (c *Controller) Init(ctx context.Context) {
	if c.deps.Profiles != nil {
		p, err := c.deps.Profiles.Fetch(ctx)
		if err != nil {
			c.logger.Error("fetching user profile failed", zap.Error(err))
			p = nil
		}
		c.mu.Lock()
		c.state.Profile = p
		c.mu.Unlock()
	}

	if c.deps.Arrivals != nil {
		c.subscribe(ctx)
	}

	c.Reload(ctx)
}

func (c *Controller) subscribe(ctx context.Context) {
	opts := datasource.SubscribeOptions{OrderBy: c.cfg.Listing.OrderBy}
	unsubscribe, err := c.deps.Arrivals.Subscribe(ctx, c.cfg.Listing.Collection, opts, c.handleRecord)
	if err != nil {
		c.logger.Error("subscribing to new documents failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	previous := c.unsubscribe
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	// Unsubscribing may wait for a delivery that needs c.mu.
	if previous != nil {
		previous()
	}
}

// Reload discards the accumulated list and fetches the first page again.
// Candidates arriving while the page is in flight are kept.
func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.epoch++
	epoch := c.epoch
	typeFilter := c.state.TypeFilter
	c.state.Loading = true
	c.state.Items = nil
	c.state.Cursor = nil
	c.mu.Unlock()

	page := c.deps.Pages.FetchPage(ctx, c.cfg.PageSize, nil, typeFilter)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(epoch) {
		c.logger.Debug("discarding stale page")
		return
	}

	c.state.Loading = false
	if page.Failed {
		// The next LoadMore retries from the first page.
		c.state.HasMore = true
		return
	}

	items := c.filter(ctx, page.Items)
	c.state.Items = merge.Merge(c.state.Items, items, merge.Append)
	c.state.Cursor = page.NextCursor
	c.state.HasMore = paginator.HasMore(page, c.cfg.PageSize, typeFilter)

	c.logger.Debug("listing reloaded",
		zap.String("type_filter", typeFilter),
		zap.Int("fetched", len(page.Items)),
		zap.Int("eligible", len(items)),
		zap.Bool("has_more", c.state.HasMore),
	)
}

// LoadMore fetches the next page and appends it after the load-more delay.
// It returns false without doing anything when there is nothing more to load
// or a fetch is already outstanding.
func (c *Controller) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed || !c.state.HasMore || c.state.Loading {
		c.mu.Unlock()
		return false
	}
	c.state.Loading = true
	epoch := c.epoch
	cursor := c.state.Cursor
	typeFilter := c.state.TypeFilter
	c.mu.Unlock()

	page := c.deps.Pages.FetchPage(ctx, c.cfg.PageSize, cursor, typeFilter)
	if page.Failed {
		c.finishLoading(epoch)
		return true
	}

	if err := utils.WaitFor(ctx, c.cfg.LoadMoreDelay); err != nil {
		c.logger.Debug("load more abandoned", zap.Error(err))
		c.finishLoading(epoch)
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(epoch) {
		c.logger.Debug("discarding stale page")
		return true
	}

	items := c.filter(ctx, page.Items)
	c.state.Items = merge.Merge(c.state.Items, items, merge.Append)
	c.state.Cursor = page.NextCursor
	c.state.HasMore = paginator.HasMore(page, c.cfg.PageSize, typeFilter)
	c.state.Loading = false

	c.logger.Debug("page appended",
		zap.Int("fetched", len(page.Items)),
		zap.Int("eligible", len(items)),
		zap.Int("total", len(c.state.Items)),
		zap.Bool("has_more", c.state.HasMore),
	)

	return true
}

func (c *Controller) finishLoading(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stale(epoch) {
		c.state.Loading = false
	}
}

// SetTypeFilter switches the type filter and reloads when it changed.
func (c *Controller) SetTypeFilter(ctx context.Context, typeFilter string) bool {
	if typeFilter == "" {
		typeFilter = catalog.AllTypes
	}

	c.mu.Lock()
	if c.closed || c.state.TypeFilter == typeFilter {
		c.mu.Unlock()
		return false
	}
	c.state.TypeFilter = typeFilter
	c.mu.Unlock()

	c.Reload(ctx)
	return true
}

// SetSortOrder changes the order of the view. It never fetches.
func (c *Controller) SetSortOrder(order SortOrder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SortOrder = order
}

// RefreshProfile fetches the profile again and reloads when it changed.
func (c *Controller) RefreshProfile(ctx context.Context) bool {
	if c.deps.Profiles == nil {
		return false
	}

	p, err := c.deps.Profiles.Fetch(ctx)
	if err != nil {
		c.logger.Error("refreshing user profile failed", zap.Error(err))
		return false
	}

	c.mu.Lock()
	if c.closed || p.Equal(c.state.Profile) {
		c.mu.Unlock()
		return false
	}
	c.state.Profile = p
	c.mu.Unlock()

	c.Reload(ctx)
	return true
}

func (c *Controller) handleRecord(r datasource.Record) {
	candidate, err := catalog.FromRecord(r.DocID, r.Data)
	if err != nil {
		c.logger.Warn("decoding new document", zap.String("doc_id", r.DocID), zap.Error(err))
	}
	c.HandleArrival(candidate)
}

// HandleArrival applies a candidate pushed by the data source. An eligible
// candidate is prepended unless already listed and raises a notification.
// It reports whether the list changed.
func (c *Controller) HandleArrival(candidate catalog.Candidate) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	kept := c.filter(context.Background(), []catalog.Candidate{candidate})
	if len(kept) == 0 {
		c.mu.Unlock()
		c.logger.Debug("ignoring ineligible arrival", logger.CandidateFields(candidate.Key(), candidate.DisplayName())...)
		return false
	}

	items, inserted := merge.InsertIfAbsent(c.state.Items, kept[0])
	c.state.Items = items

	n := c.notificationFor(kept[0])
	c.state.Notification = &n
	c.mu.Unlock()

	c.logger.Info("new candidate arrived",
		append(logger.CandidateFields(candidate.Key(), candidate.DisplayName()), zap.Bool("inserted", inserted))...,
	)

	if c.deps.OnNotify != nil {
		c.deps.OnNotify(n)
	}

	return inserted
}

func (c *Controller) notificationFor(candidate catalog.Candidate) Notification {
	noun := c.cfg.Listing.Noun
	if noun == "" {
		noun = "item"
	}

	value := ""
	if v, ok := c.cfg.Listing.SortValue(candidate); ok {
		value = catalog.NumberOf(v).String()
	}

	return Notification{
		Message:   fmt.Sprintf("New %s added!", noun),
		Title:     candidate.DisplayName(),
		Value:     value,
		ExpiresAt: c.deps.Now().Add(c.cfg.NotificationTTL),
	}
}

// DismissNotification hides the current notification.
func (c *Controller) DismissNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Notification = nil
}

// State returns a snapshot of the session. Expired notifications are
// dropped.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.state.Notification; n != nil && !c.deps.Now().Before(n.ExpiresAt) {
		c.state.Notification = nil
	}

	return c.state.clone()
}

// View returns the list to display for the current state.
func (c *Controller) View() []catalog.Candidate {
	c.mu.Lock()
	items := c.state.Items
	typeFilter := c.state.TypeFilter
	order := c.state.SortOrder
	c.mu.Unlock()

	return Derive(items, c.cfg.Listing, typeFilter, order)
}

// Listing returns the listing the controller serves.
func (c *Controller) Listing() catalog.Listing {
	return c.cfg.Listing
}

// Filters returns the filters applied to pages and arrivals.
func (c *Controller) Filters() []filtering.Filter {
	return c.deps.Filters
}

// Close unsubscribes from arrivals and abandons in-flight fetches. It is
// safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epoch++
	c.state.Loading = false
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *Controller) stale(epoch uint64) bool {
	return c.closed || epoch != c.epoch
}

// filter runs the configured filters with the current profile. Callers hold
// c.mu. Filter errors keep the candidates.
func (c *Controller) filter(ctx context.Context, items []catalog.Candidate) []catalog.Candidate {
	if len(items) == 0 {
		return items
	}

	kept, err := filtering.Run(ctx, filtering.Deps{Logger: c.logger, Profile: c.state.Profile}, c.deps.Filters, items)
	if err != nil {
		c.logger.Warn("filtering candidates failed", zap.Error(err))
		return items
	}

	return kept
}
