package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dittoview/pkg/state"
	"github.com/marmos91/dittoview/pkg/state/memory"
	"github.com/marmos91/dittoview/pkg/tree"
	"github.com/marmos91/dittoview/pkg/treeclient"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory tree that records calls.
type fakeBackend struct {
	mu sync.Mutex

	items    map[string]*tree.Item
	children map[string][]string
	// hidden ids are listed as children but missing from batch responses.
	hidden map[string]bool

	results  map[string][]tree.SearchResult
	tokens   map[string]string
	probeErr map[string]error

	generation    tree.Generation
	generationErr error

	searches  []string
	getItems  []string
	batches   int
	probes    int
	beforeGet func(id string)
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		items:    map[string]*tree.Item{},
		children: map[string][]string{},
		hidden:   map[string]bool{},
		results:  map[string][]tree.SearchResult{},
		tokens:   map[string]string{},
		probeErr: map[string]error{},
	}
	b.addFolder("root", "My files", "")
	return b
}

func (b *fakeBackend) addFolder(id, name, parent string) *tree.Item {
	item := &tree.Item{ID: id, Name: name, Type: tree.TypeFolder}
	b.add(item, parent)
	return item
}

func (b *fakeBackend) addDoc(id, name, parent string, pages, current int) *tree.Item {
	item := &tree.Item{ID: id, Name: name, Type: tree.TypePDF, PageCount: pages, CurrentPage: current}
	b.add(item, parent)
	b.tokens[id] = "v1"
	return item
}

func (b *fakeBackend) add(item *tree.Item, parent string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[item.ID] = item
	if parent != "" {
		b.children[parent] = append(b.children[parent], item.ID)
		b.items[parent].ItemCount++
	}
	item.Path = b.pathLocked(item.ID, parent)
}

func (b *fakeBackend) pathLocked(id, parent string) []tree.PathEntry {
	var path []tree.PathEntry
	if parent != "" {
		path = append(path, b.items[parent].Path...)
	}
	return append(path, tree.PathEntry{ID: id, Name: b.items[id].Name})
}

// remove deletes id; its parent still lists it.
func (b *fakeBackend) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, id)
}

func (b *fakeBackend) setToken(id, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[id] = token
}

func (b *fakeBackend) setGeneration(g tree.Generation, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation = g
	b.generationErr = err
}

func (b *fakeBackend) GetItem(_ context.Context, id string) *tree.Item {
	b.mu.Lock()
	hook := b.beforeGet
	b.getItems = append(b.getItems, id)
	b.mu.Unlock()

	if hook != nil {
		hook(id)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[id]
	if !ok {
		return nil
	}
	cp := *item
	return &cp
}

func (b *fakeBackend) GetChildIDs(_ context.Context, id string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.children[id]...)
}

func (b *fakeBackend) GetBatch(_ context.Context, ids []string) map[string]*tree.Item {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := map[string]*tree.Item{}
	if len(ids) == 0 {
		return out
	}
	b.batches++
	for _, id := range ids {
		if item, ok := b.items[id]; ok && !b.hidden[id] {
			cp := *item
			cp.Path = nil
			out[id] = &cp
		}
	}
	return out
}

func (b *fakeBackend) Search(_ context.Context, query string) tree.SearchResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searches = append(b.searches, query)
	return tree.SearchResponse{Query: query, Results: append([]tree.SearchResult{}, b.results[query]...)}
}

func (b *fakeBackend) Generation(context.Context) (tree.Generation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation, b.generationErr
}

func (b *fakeBackend) ProbeModified(_ context.Context, docURL string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probes++

	id := treeclient.ItemIDFromURL(docURL)
	if err := b.probeErr[id]; err != nil {
		return "", err
	}
	token, ok := b.tokens[id]
	if !ok {
		return "", fmt.Errorf("probe: %w", tree.ErrNotFound)
	}
	return token, nil
}

func (b *fakeBackend) searchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.searches)
}

func (b *fakeBackend) getItemCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.getItems)
}

// fakeEngine records every command in order.
type fakeEngine struct {
	mu      sync.Mutex
	sink    EventSink
	ops     []string
	zoom    map[SessionID]float64
	offset  map[SessionID]Point
	openErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{zoom: map[SessionID]float64{}, offset: map[SessionID]Point{}}
}

func (e *fakeEngine) record(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ops = append(e.ops, fmt.Sprintf(format, args...))
}

func (e *fakeEngine) Subscribe(sink EventSink) { e.sink = sink }

func (e *fakeEngine) Open(_ context.Context, id SessionID, url string) error {
	if e.openErr != nil {
		return e.openErr
	}
	e.record("open %d %s", id, url)
	return nil
}

func (e *fakeEngine) Close(id SessionID)                  { e.record("close %d", id) }
func (e *fakeEngine) ScrollToPage(id SessionID, page int) { e.record("page %d %d", id, page) }
func (e *fakeEngine) Search(id SessionID, term string)    { e.record("search %d %s", id, term) }

func (e *fakeEngine) RequestZoom(id SessionID, level float64) {
	e.record("zoom %d %g", id, level)
}

func (e *fakeEngine) SetScrollOffset(id SessionID, p Point) {
	e.record("scroll %d %g,%g", id, p.X, p.Y)
}

func (e *fakeEngine) ZoomLevel(id SessionID) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	z, ok := e.zoom[id]
	return z, ok
}

func (e *fakeEngine) ScrollOffset(id SessionID) (Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.offset[id]
	return p, ok
}

func (e *fakeEngine) setViewport(id SessionID, zoom float64, p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoom[id] = zoom
	e.offset[id] = p
}

func (e *fakeEngine) takeOps() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ops := e.ops
	e.ops = nil
	return ops
}

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (m *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{clock: m, at: m.now + d, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.at <= m.now {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// recordingMetrics counts outcomes by name.
type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: map[string]int{}}
}

func (m *recordingMetrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
}

func (m *recordingMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *recordingMetrics) RecordNavigation(o string) { m.inc("navigation:" + o) }
func (m *recordingMetrics) RecordSearch(o string)     { m.inc("search:" + o) }
func (m *recordingMetrics) RecordSessionOpened()      { m.inc("session") }
func (m *recordingMetrics) RecordReconcile(o string)  { m.inc("reconcile:" + o) }
func (m *recordingMetrics) SetGeneration(int64)       { m.inc("generation") }

// harness wires a controller to fakes.
type harness struct {
	backend *fakeBackend
	engine  *fakeEngine
	store   *memory.Store
	clock   *manualClock
	metrics *recordingMetrics
	c       *Controller
}

const debounce = 300 * time.Millisecond

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		backend: newFakeBackend(),
		engine:  newFakeEngine(),
		store:   memory.New(),
		clock:   &manualClock{},
		metrics: newRecordingMetrics(),
	}
	h.c = New(h.backend, h.engine, h.store, Options{
		SearchDebounce: debounce,
		Clock:          h.clock,
		Metrics:        h.metrics,
	})
	t.Cleanup(h.c.Close)
	return h
}

func (h *harness) persisted(t *testing.T, key state.Key) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func entryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

var errTransport = errors.New("connection refused")
