// Package browser implements the view-state controller: folder navigation,
// search-as-you-type, sorting, the document viewer session lifecycle and the
// live-sync reconciliation that keeps an open view consistent with backend
// changes.
//
// All state lives in one Controller and changes only through its named
// operations. The controller mutex is never held across backend requests or
// engine commands; every asynchronous result is applied only if the
// operation that produced it is still current (sequence tokens for listings,
// session ids for the viewer).
package browser

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/state"
	"github.com/marmos91/dittoview/pkg/tree"
)

// DefaultSearchDebounce is the quiet period before a query is sent.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchResultsName is the label of the synthetic search breadcrumb.
const SearchResultsName = "Search results"

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// RootID is the top-level folder id. Defaults to tree.RootID.
	RootID string

	// RootName labels the fallback breadcrumb. Defaults to tree.RootName.
	RootName string

	// SearchDebounce is the typing pause before a search is issued.
	SearchDebounce time.Duration

	// Clock schedules debounced work. Defaults to wall time.
	Clock Clock

	// Metrics receives controller observations. Defaults to no-op.
	Metrics Metrics

	// OnChange is called with a fresh snapshot after every visible change.
	// It runs without the controller lock held.
	OnChange func(View)
}

// Controller owns all browsing state.
//
// Thread safety:
// All exported methods are safe for concurrent use. Engine events may
// arrive on any goroutine.
type Controller struct {
	backend Backend
	engine  Engine
	store   state.Store
	metrics Metrics
	opts    Options

	// ctx outlives individual calls; debounced searches run under it.
	ctx    context.Context
	cancel context.CancelFunc

	debounce *Debouncer

	mu sync.Mutex

	folderID   string
	breadcrumb []tree.PathEntry
	folders    []tree.SearchResult
	documents  []tree.SearchResult

	sort       sortController
	searchMode bool
	query      string
	searchTerm string

	// viewSeq is bumped by every listing-producing operation; a response is
	// applied only if its token is still the latest.
	viewSeq uint64

	session     *session
	lastSession SessionID
}

// New creates a controller and subscribes it to engine events.
//
// Parameters:
//   - backend: Tree backend (usually *treeclient.Client)
//   - engine: Rendering engine
//   - store: Durable state; writes are best effort
//   - opts: Optional settings
//
// Returns:
//   - *Controller: Controller showing an empty root listing until Restore
//     or NavigateTo is called
func New(backend Backend, engine Engine, store state.Store, opts Options) *Controller {
	if opts.RootID == "" {
		opts.RootID = tree.RootID
	}
	if opts.RootName == "" {
		opts.RootName = tree.RootName
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	m := opts.Metrics
	if m == nil {
		m = noopMetrics{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		backend:    backend,
		engine:     engine,
		store:      store,
		metrics:    m,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		debounce:   NewDebouncer(opts.Clock, opts.SearchDebounce),
		folderID:   opts.RootID,
		breadcrumb: []tree.PathEntry{{ID: opts.RootID, Name: opts.RootName}},
		sort:       newSortController(FieldModified, true),
	}
	engine.Subscribe(c)
	return c
}

// Close stops pending debounced work. The open session and persisted state
// are left untouched so the next start can resume.
func (c *Controller) Close() {
	c.debounce.Cancel()
	c.cancel()
}

// SelectSort applies a click on a sort option and re-sorts the listing.
//
// The relevance field can only be selected while searching.
func (c *Controller) SelectSort(ctx context.Context, field Field) error {
	c.mu.Lock()
	if field == FieldResults && !c.searchMode {
		c.mu.Unlock()
		return ErrResultsOutsideSearch
	}
	c.sort.selectField(field)
	c.resortLocked()
	c.persistSortLocked(ctx)
	c.mu.Unlock()

	c.notify()
	return nil
}

// Sort returns the active ordering.
func (c *Controller) Sort() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort.state()
}

func (c *Controller) resortLocked() {
	st := c.sort.state()
	sortListing(c.folders, st)
	sortListing(c.documents, st)
}

// persistSortLocked writes the ordering unless it is the ephemeral one.
func (c *Controller) persistSortLocked(ctx context.Context) {
	if !c.sort.persistable() {
		return
	}
	st := c.sort.state()
	c.put(ctx, state.KeySortField, string(st.Field))
	c.put(ctx, state.KeySortDirection, st.direction())
}

// exitSearchLocked leaves search mode, restoring the user's ordering.
// Reports whether search mode was active.
func (c *Controller) exitSearchLocked(ctx context.Context) bool {
	if !c.searchMode {
		return false
	}
	c.searchMode = false
	c.query = ""
	c.searchTerm = ""
	c.sort.exitSearch()
	c.persistSortLocked(ctx)
	return true
}

func (c *Controller) put(ctx context.Context, key state.Key, value string) {
	if err := c.store.Set(ctx, key, value); err != nil {
		logger.Warn("browser: persist %s: %v", key, err)
	}
}

func (c *Controller) putInt(ctx context.Context, key state.Key, value int) {
	c.put(ctx, key, strconv.Itoa(value))
}

func (c *Controller) get(ctx context.Context, key state.Key) (string, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn("browser: read %s: %v", key, err)
		return "", false
	}
	return v, ok
}

func (c *Controller) clear(ctx context.Context, keys ...state.Key) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		logger.Warn("browser: clear %v: %v", keys, err)
	}
}

// notify publishes a snapshot to the OnChange hook.
func (c *Controller) notify() {
	if c.opts.OnChange == nil {
		return
	}
	c.opts.OnChange(c.View())
}
