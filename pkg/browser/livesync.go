package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/state"
	"github.com/marmos91/dittoview/pkg/tree"
)

// DefaultPollInterval is how often the backend generation is polled.
const DefaultPollInterval = 2 * time.Second

// LiveSync polls the backend change counter and pushes changes into the
// controller.
//
// State machine over the last observed generation: Unseen, then Known(n).
// The first observation only sets the baseline. A different value refreshes
// the current folder and reconciles the open document.
type LiveSync struct {
	c        *Controller
	interval time.Duration

	mu    sync.Mutex
	seen  bool
	known tree.Generation

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewLiveSync creates a monitor for c. A zero interval uses
// DefaultPollInterval.
func NewLiveSync(c *Controller, interval time.Duration) *LiveSync {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &LiveSync{
		c:        c,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the poll loop until ctx is cancelled or Stop is called.
func (l *LiveSync) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go l.run(ctx)
}

// Stop stops the poll loop and waits for it to exit.
func (l *LiveSync) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})

	l.mu.Lock()
	started := l.started
	l.mu.Unlock()
	if started {
		<-l.doneCh
	}
}

func (l *LiveSync) run(ctx context.Context) {
	defer close(l.doneCh)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	logger.Info("live sync: polling every %v", l.interval)

	l.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Known returns the last observed generation and whether one was observed.
func (l *LiveSync) Known() (tree.Generation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.known, l.seen
}

// Tick performs one poll. Failures are swallowed; the next tick retries.
func (l *LiveSync) Tick(ctx context.Context) {
	gen, err := l.c.backend.Generation(ctx)
	if err != nil {
		logger.Debug("live sync: generation poll failed: %v", err)
		return
	}

	l.mu.Lock()
	if !l.seen {
		l.seen = true
		l.known = gen
		l.mu.Unlock()
		l.c.metrics.SetGeneration(int64(gen))
		logger.Debug("live sync: baseline generation %d", gen)
		return
	}
	if gen == l.known {
		l.mu.Unlock()
		return
	}
	prev := l.known
	l.known = gen
	l.mu.Unlock()

	l.c.metrics.SetGeneration(int64(gen))
	logger.Info("live sync: generation %d -> %d", prev, gen)

	l.c.Refresh(ctx)

	// A failed probe keeps the session; the next generation change
	// reconciles again.
	l.c.reconcile(ctx)
}

type reconcileOutcome string

const (
	reconcileNone      reconcileOutcome = "none"
	reconcileUnchanged reconcileOutcome = "unchanged"
	reconcileAdopted   reconcileOutcome = "adopted"
	reconcileReopened  reconcileOutcome = "reopened"
	reconcileRemoved   reconcileOutcome = "removed"
	reconcileRetry     reconcileOutcome = "retry"
)

// reconcile checks the open document against its remote modification token.
//
//   - document gone: the session is closed and its keys cleared
//   - token unchanged: nothing
//   - token changed: the document is reopened at page 1 under a new session,
//     restoring zoom and then scroll offset when both were captured
//   - probe failed for another reason: retried on the next change
func (c *Controller) reconcile(ctx context.Context) reconcileOutcome {
	if _, ok := c.get(ctx, state.KeyOpenItem); !ok {
		return reconcileNone
	}

	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return reconcileNone
	}
	id, url, cached := s.id, s.url, s.token
	c.mu.Unlock()

	outcome := c.reconcileSession(ctx, id, url, cached)
	if outcome != reconcileNone {
		c.metrics.RecordReconcile(string(outcome))
	}
	return outcome
}

func (c *Controller) reconcileSession(ctx context.Context, id SessionID, url, cached string) reconcileOutcome {
	token, err := c.backend.ProbeModified(ctx, url)
	if err != nil {
		if errors.Is(err, tree.ErrNotFound) {
			if c.closeSessionIfCurrent(ctx, id) {
				logger.Info("live sync: %s was removed, viewer closed", url)
			}
			return reconcileRemoved
		}
		logger.Debug("live sync: probe %s failed: %v", url, err)
		return reconcileRetry
	}

	if cached == "" {
		c.mu.Lock()
		if c.session != nil && c.session.id == id {
			c.session.token = token
		}
		c.mu.Unlock()
		return reconcileAdopted
	}

	if token == cached {
		return reconcileUnchanged
	}

	var restore *viewport
	zoom, zoomOK := c.engine.ZoomLevel(id)
	offset, offsetOK := c.engine.ScrollOffset(id)
	if zoomOK && offsetOK {
		restore = &viewport{zoom: zoom, offset: offset}
	}

	c.mu.Lock()
	current := c.session != nil && c.session.id == id
	c.mu.Unlock()
	if !current {
		return reconcileNone
	}

	logger.Info("live sync: %s changed, reopening", url)
	c.openSession(ctx, url, 1, "", token, restore)
	return reconcileReopened
}
