package browser

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/marmos91/dittoview/pkg/state"
	"github.com/marmos91/dittoview/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncHarness(t *testing.T) (*harness, *LiveSync) {
	t.Helper()
	h := newHarness(t)
	h.backend.addDoc("doc", "Doc", "root", 20, 1)
	require.True(t, h.c.NavigateTo(context.Background(), "root"))
	h.backend.setGeneration(1, nil)
	return h, NewLiveSync(h.c, time.Hour)
}

func TestBaselineThenEqualGenerationsDoNothing(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	h.c.Open(ctx, "/api/tree/doc/pdf", 1, "")

	gets, probes := h.backend.getItemCount(), h.backend.probes

	l.Tick(ctx)
	gen, seen := l.Known()
	assert.True(t, seen)
	assert.Equal(t, tree.Generation(1), gen)

	l.Tick(ctx)
	l.Tick(ctx)

	assert.Equal(t, gets, h.backend.getItemCount(), "no refresh")
	assert.Equal(t, probes, h.backend.probes, "no reconciliation")
}

func TestGenerationPollFailureSwallowed(t *testing.T) {
	h, l := syncHarness(t)
	h.backend.setGeneration(0, fmt.Errorf("poll: %w", tree.ErrUnavailable))

	l.Tick(context.Background())
	_, seen := l.Known()
	assert.False(t, seen, "failed poll does not set the baseline")
}

func TestGenerationChangeRefreshesListing(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	l.Tick(ctx)

	h.backend.addDoc("new", "New", "root", 1, 1)
	h.backend.setGeneration(2, nil)
	l.Tick(ctx)

	assert.ElementsMatch(t, []string{"doc", "new"}, entryIDs(h.c.View().Documents))
}

func TestRemovedDocumentClosesSession(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	id := h.c.Open(ctx, "/api/tree/doc/pdf", 3, "")
	l.Tick(ctx)
	h.engine.takeOps()

	h.backend.probeErr["doc"] = fmt.Errorf("probe: %w", tree.ErrNotFound)
	h.backend.setGeneration(2, nil)
	l.Tick(ctx)

	assert.Nil(t, h.c.View().Session)
	_, ok := h.persisted(t, state.KeyOpenItem)
	assert.False(t, ok)
	_, ok = h.persisted(t, state.KeyOpenPage)
	assert.False(t, ok)
	assert.Contains(t, h.engine.takeOps(), fmt.Sprintf("close %d", id))
	assert.Equal(t, 1, h.metrics.count("reconcile:removed"))
}

func TestUnchangedTokenKeepsSession(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	id := h.c.Open(ctx, "/api/tree/doc/pdf", 1, "")
	l.Tick(ctx)
	h.engine.takeOps()

	h.backend.setGeneration(2, nil)
	l.Tick(ctx)

	assert.Equal(t, id, h.c.View().Session.ID)
	assert.Empty(t, h.engine.takeOps())
	assert.Equal(t, 1, h.metrics.count("reconcile:unchanged"))
}

func TestChangedTokenReopensWithTwoPhaseRestore(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	id := h.c.Open(ctx, "/api/tree/doc/pdf", 9, "")
	h.c.HandleLayoutReady(id)
	l.Tick(ctx)

	h.engine.setViewport(id, 1.5, Point{X: 0, Y: 500})
	h.engine.takeOps()

	h.backend.setToken("doc", "v2")
	h.backend.setGeneration(2, nil)
	l.Tick(ctx)

	s := h.c.View().Session
	require.NotNil(t, s)
	next := s.ID
	assert.NotEqual(t, id, next)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "v2", s.Token)

	h.c.HandleLayoutReady(next)
	h.c.HandleLayoutReady(next)
	h.c.HandleLayoutReady(next)

	assert.Equal(t, []string{
		fmt.Sprintf("open %d /api/tree/doc/pdf", next),
		fmt.Sprintf("close %d", id),
		fmt.Sprintf("zoom %d 1.5", next),
		fmt.Sprintf("scroll %d 0,500", next),
	}, h.engine.takeOps())
	assert.Equal(t, "scroll_applied", h.c.View().Session.Phase)

	page, _ := h.persisted(t, state.KeyOpenPage)
	assert.Equal(t, "1", page)
}

func TestChangedTokenWithoutViewportReopensPlain(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	id := h.c.Open(ctx, "/api/tree/doc/pdf", 1, "")
	l.Tick(ctx)

	h.backend.setToken("doc", "v2")
	h.backend.setGeneration(2, nil)
	l.Tick(ctx)
	h.engine.takeOps()

	next := h.c.View().Session.ID
	require.NotEqual(t, id, next)

	h.c.HandleLayoutReady(next)
	assert.Empty(t, h.engine.takeOps())
	assert.Equal(t, "settled", h.c.View().Session.Phase)
}

// A transient probe failure keeps the session. Equal polls afterwards do
// nothing; the next generation change reconciles again.
func TestProbeFailureWaitsForNextChange(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	id := h.c.Open(ctx, "/api/tree/doc/pdf", 1, "")
	l.Tick(ctx)

	h.backend.setToken("doc", "v2")
	h.backend.probeErr["doc"] = fmt.Errorf("probe: %w", tree.ErrUnavailable)
	h.backend.setGeneration(2, nil)
	l.Tick(ctx)

	assert.Equal(t, id, h.c.View().Session.ID, "session kept on transient failure")
	assert.Equal(t, 1, h.metrics.count("reconcile:retry"))
	gen, _ := l.Known()
	assert.Equal(t, tree.Generation(2), gen)

	delete(h.backend.probeErr, "doc")
	gets, probes := h.backend.getItemCount(), h.backend.probes
	for i := 0; i < 5; i++ {
		l.Tick(ctx)
	}
	assert.Equal(t, gets, h.backend.getItemCount(), "no refresh on equal polls")
	assert.Equal(t, probes, h.backend.probes, "no reconciliation on equal polls")
	assert.Equal(t, id, h.c.View().Session.ID)

	h.backend.setGeneration(3, nil)
	l.Tick(ctx)

	assert.NotEqual(t, id, h.c.View().Session.ID)
	assert.Equal(t, 1, h.metrics.count("reconcile:reopened"))
	gen, _ = l.Known()
	assert.Equal(t, tree.Generation(3), gen)
}

func TestNoReconcileWithoutPersistedItem(t *testing.T) {
	h, l := syncHarness(t)
	ctx := context.Background()
	h.c.Open(ctx, "/api/tree/doc/pdf", 1, "")
	l.Tick(ctx)

	require.NoError(t, h.store.Delete(ctx, state.KeyOpenItem))
	probes := h.backend.probes

	h.backend.setGeneration(2, nil)
	l.Tick(ctx)
	assert.Equal(t, probes, h.backend.probes)
}

func TestLiveSyncStartStop(t *testing.T) {
	h, _ := syncHarness(t)
	l := NewLiveSync(h.c, 5*time.Millisecond)

	l.Start(context.Background())
	require.Eventually(t, func() bool {
		_, seen := l.Known()
		return seen
	}, time.Second, 5*time.Millisecond)
	l.Stop()
	l.Stop()

	NewLiveSync(h.c, 0).Stop()
}
