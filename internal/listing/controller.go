// Package listing drives a paginated, filterable list of sales.
package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"sales_browser/internal/sales"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	DefaultDebounce = 500 * time.Millisecond
)

var (
	// ErrBusy is returned by LoadMore while another fetch is in flight or
	// before the first page of the current filters has landed.
	ErrBusy = errors.New("listing: fetch in progress")
	// ErrNoMore is returned by LoadMore after the last page.
	ErrNoMore = errors.New("listing: no more pages")
	// ErrSuperseded is returned when a response arrives for filters that
	// have since been replaced; the response is dropped.
	ErrSuperseded = errors.New("listing: response superseded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("listing: controller closed")
)

// State of the list screen.
type State int

const (
	Idle State = iota
	LoadingInitial
	LoadingMore
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingInitial:
		return "loading"
	case LoadingMore:
		return "loading-more"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}

// Lister fetches one page of sales.
type Lister interface {
	ListSales(ctx context.Context, q sales.Query) (*sales.Page, error)
}

// Snapshot is a copy of the list state for rendering.
type Snapshot struct {
	State      State
	Items      []sales.Sale
	Page       int
	HasMore    bool
	TotalItems int64
	// Filters holds the edited filters; ActiveFilters the ones Items were
	// loaded with.
	Filters        sales.Filters
	ActiveFilters  sales.Filters
	LoadingInitial bool
	LoadingMore    bool
	Err            error
	Epoch          uint64
}

// AllLoaded reports whether every matching sale is in Items.
func (s Snapshot) AllLoaded() bool {
	return s.State == Ready && !s.HasMore
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize sets the page size requested from the backend.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithDebounce sets the quiet period before a filter change reloads.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFilters sets the filters of the first load.
func WithFilters(f sales.Filters) Option {
	return func(c *Controller) { c.filters = f }
}

// WithOnChange registers an observer called after every state change. It may
// be called from the debounce goroutine, so it must not call Close: Close
// waits for the debounced reload that is running the observer.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the state of one list screen. Each filter configuration is
// an epoch: starting a new one cancels the requests of the previous one and
// drops their late responses.
type Controller struct {
	lister   Lister
	pageSize int
	debounce time.Duration
	logger   *zap.Logger
	onChange func(Snapshot)
	reloader *Debouncer

	mu             sync.Mutex
	base           context.Context
	state          State
	items          []sales.Sale
	seen           map[int64]struct{}
	page           int
	removed        int
	hasMore        bool
	total          int64
	filters        sales.Filters
	active         sales.Filters
	epoch          uint64
	epochCtx       context.Context
	epochCancel    context.CancelFunc
	firstPageIn    bool
	loadingInitial bool
	loadingMore    bool
	err            error
	closed         bool
}

// New creates an idle Controller. Call Start to load the first page.
func New(lister Lister, opts ...Option) *Controller {
	c := &Controller{
		lister:   lister,
		pageSize: DefaultPageSize,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		base:     context.Background(),
		hasMore:  true,
		seen:     map[int64]struct{}{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.epochCtx, c.epochCancel = context.WithCancel(context.Background())
	c.reloader = NewDebouncer(c.debounce, c.debouncedReload)
	return c
}

// Start loads the first page. ctx also bounds the reloads fired by later
// filter changes.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.base = ctx
	c.mu.Unlock()
	return c.Reload(ctx)
}

// SetFilters records new filters and schedules a debounced reload.
func (c *Controller) SetFilters(f sales.Filters) {
	c.mu.Lock()
	if c.closed || f == c.filters {
		c.mu.Unlock()
		return
	}
	c.filters = f
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.reloader.Trigger()
	c.publish(snap)
}

// SetName updates the seller name filter.
func (c *Controller) SetName(name string) {
	c.SetFilters(c.editFilters(func(f *sales.Filters) { f.Name = name }))
}

// SetMinDate updates the lower date bound.
func (c *Controller) SetMinDate(date string) {
	c.SetFilters(c.editFilters(func(f *sales.Filters) { f.MinDate = date }))
}

// SetMaxDate updates the upper date bound.
func (c *Controller) SetMaxDate(date string) {
	c.SetFilters(c.editFilters(func(f *sales.Filters) { f.MaxDate = date }))
}

func (c *Controller) editFilters(edit func(*sales.Filters)) sales.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.filters
	edit(&f)
	return f
}

// ApplyFilters reloads right away, dropping any pending debounced reload.
func (c *Controller) ApplyFilters(ctx context.Context) error {
	c.reloader.Cancel()
	return c.Reload(ctx)
}

// ReloadPending reports whether a debounced reload is scheduled.
func (c *Controller) ReloadPending() bool {
	return c.reloader.Pending()
}

func (c *Controller) debouncedReload() {
	c.mu.Lock()
	ctx := c.base
	c.mu.Unlock()

	if err := c.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
		c.logger.Warn("debounced reload failed", zap.Error(err))
	}
}

// Reload starts a new epoch with the current filters and fetches page 0.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	epoch, epochCtx := c.nextEpochLocked()
	c.active = c.filters
	c.state = LoadingInitial
	c.loadingInitial = true
	c.loadingMore = false
	c.items = nil
	c.seen = map[int64]struct{}{}
	c.page = 0
	c.removed = 0
	c.hasMore = true
	c.total = 0
	c.firstPageIn = false
	c.err = nil
	q := sales.Query{Page: 0, Size: c.pageSize, Sort: sales.DefaultSort, Filters: c.active}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)

	c.logger.Debug("loading first page", zap.Uint64("epoch", epoch), zap.Any("filters", q.Filters))
	page, err := c.fetch(ctx, epochCtx, q)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("dropping stale first page", zap.Uint64("epoch", epoch))
		return ErrSuperseded
	}
	c.loadingInitial = false
	if err != nil {
		c.state = Error
		c.err = err
		c.items = nil
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Error("failed to load sales", zap.Uint64("epoch", epoch), zap.Error(err))
		c.publish(snap)
		return err
	}
	c.appendLocked(page.Content)
	c.total = page.TotalElements
	c.hasMore = !page.Last
	c.page = 0
	c.firstPageIn = true
	c.state = Ready
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
	return nil
}

// LoadMore fetches the page after the cursor with the active filters.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.loadingInitial || c.loadingMore || !c.firstPageIn {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.hasMore {
		c.mu.Unlock()
		return ErrNoMore
	}
	epoch, epochCtx := c.epoch, c.epochCtx
	next, removed := c.nextPageLocked(), c.removed
	c.loadingMore = true
	c.state = LoadingMore
	q := sales.Query{Page: next, Size: c.pageSize, Sort: sales.DefaultSort, Filters: c.active}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)

	c.logger.Debug("loading page", zap.Uint64("epoch", epoch), zap.Int("page", next))
	page, err := c.fetch(ctx, epochCtx, q)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("dropping stale page", zap.Uint64("epoch", epoch), zap.Int("page", next))
		return ErrSuperseded
	}
	c.loadingMore = false
	if err != nil {
		// loaded items stay visible
		c.state = Error
		c.err = err
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Error("failed to load more sales", zap.Int("page", next), zap.Error(err))
		c.publish(snap)
		return err
	}
	c.appendLocked(page.Content)
	c.total = page.TotalElements
	c.hasMore = !page.Last
	c.page = next
	c.removed -= removed
	c.state = Ready
	c.err = nil
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
	return nil
}

// nextPageLocked returns the page following the loaded rows. The backend pages
// by offset, so every removed row pulls later rows one place back; the page
// holding the first unseen row is requested again and dedup drops the rows
// already listed.
func (c *Controller) nextPageLocked() int {
	if c.removed == 0 {
		return c.page + 1
	}
	offset := max((c.page+1)*c.pageSize-c.removed, 0)
	return offset / c.pageSize
}

// fetch runs one request bound to both the caller's ctx and the epoch.
func (c *Controller) fetch(ctx, epochCtx context.Context, q sales.Query) (*sales.Page, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(epochCtx, cancel)
	defer stop()

	return c.lister.ListSales(reqCtx, q)
}

func (c *Controller) nextEpochLocked() (uint64, context.Context) {
	c.epochCancel()
	c.epoch++
	c.epochCtx, c.epochCancel = context.WithCancel(context.Background())
	return c.epoch, c.epochCtx
}

// appendLocked adds sales in order, skipping ids already listed.
func (c *Controller) appendLocked(content []sales.Sale) {
	for _, s := range content {
		if _, dup := c.seen[s.ID]; dup {
			c.logger.Debug("skipping duplicate sale", zap.Int64("sale_id", s.ID))
			continue
		}
		c.seen[s.ID] = struct{}{}
		c.items = append(c.items, s)
	}
}

// Remove drops a sale deleted elsewhere from the loaded items. The next
// LoadMore accounts for the rows the deletion shifted on the backend.
func (c *Controller) Remove(id int64) bool {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	delete(c.seen, id)
	c.removed++
	if c.total > 0 {
		c.total--
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
	return true
}

// Replace swaps in an edited sale with the same id.
func (c *Controller) Replace(sale sales.Sale) bool {
	c.mu.Lock()
	idx := c.indexLocked(sale.ID)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.items[idx] = sale
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
	return true
}

// Find returns a loaded sale by id.
func (c *Controller) Find(id int64) (sales.Sale, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.items[idx], true
	}
	return sales.Sale{}, false
}

func (c *Controller) indexLocked(id int64) int {
	for i, s := range c.items {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	items := make([]sales.Sale, len(c.items))
	copy(items, c.items)
	return Snapshot{
		State:          c.state,
		Items:          items,
		Page:           c.page,
		HasMore:        c.hasMore,
		TotalItems:     c.total,
		Filters:        c.filters,
		ActiveFilters:  c.active,
		LoadingInitial: c.loadingInitial,
		LoadingMore:    c.loadingMore,
		Err:            c.err,
		Epoch:          c.epoch,
	}
}

func (c *Controller) publish(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// Close stops the debounce task and cancels in-flight requests.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epochCancel()
	c.mu.Unlock()

	c.reloader.Stop()
}
