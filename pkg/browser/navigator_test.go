package browser

import (
	"context"
	"sync"
	"testing"

	"github.com/marmos91/dittoview/pkg/state"
	"github.com/marmos91/dittoview/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigatePartitionsChildren(t *testing.T) {
	h := newHarness(t)
	h.backend.addFolder("f1", "Work", "root")
	h.backend.addDoc("d1", "Notes", "root", 10, 3)
	h.backend.addFolder("f2", "Home", "root")

	require.True(t, h.c.NavigateTo(context.Background(), "root"))

	v := h.c.View()
	assert.Equal(t, "root", v.FolderID)
	assert.ElementsMatch(t, []string{"f1", "f2"}, entryIDs(v.Folders))
	assert.Equal(t, []string{"d1"}, entryIDs(v.Documents))
	assert.Equal(t, "Page 3 of 10", v.Documents[0].Subtitle)
	assert.Equal(t, "0 items", v.Folders[0].Subtitle)
}

// A batch response missing a listed child drops that child silently.
func TestNavigateDropsChildrenMissingFromBatch(t *testing.T) {
	h := newHarness(t)
	h.backend.addFolder("F", "F", "root")
	h.backend.addDoc("a", "a", "F", 1, 1)
	h.backend.addDoc("b", "b", "F", 1, 1)
	h.backend.addDoc("c", "c", "F", 1, 1)
	h.backend.hidden["c"] = true

	require.True(t, h.c.NavigateTo(context.Background(), "F"))

	assert.ElementsMatch(t, []string{"a", "b"}, entryIDs(h.c.View().Documents))
	assert.Equal(t, 1, h.metrics.count("navigation:applied"))
}

func TestNavigateUnknownKeepsView(t *testing.T) {
	h := newHarness(t)
	h.backend.addDoc("d1", "Notes", "root", 1, 1)
	ctx := context.Background()

	require.True(t, h.c.NavigateTo(ctx, "root"))
	before := h.c.View()

	assert.False(t, h.c.NavigateTo(ctx, "nope"))
	assert.Equal(t, before, h.c.View())

	v, _ := h.persisted(t, state.KeyLastFolder)
	assert.Equal(t, "root", v)
	assert.Equal(t, 1, h.metrics.count("navigation:not_found"))
}

func TestNavigateBreadcrumb(t *testing.T) {
	h := newHarness(t)
	h.backend.addFolder("work", "Work", "root")
	h.backend.addFolder("q1", "Q1", "work")
	ctx := context.Background()

	require.True(t, h.c.NavigateTo(ctx, "q1"))
	assert.Equal(t, []tree.PathEntry{
		{ID: "root", Name: "My files"},
		{ID: "work", Name: "Work"},
		{ID: "q1", Name: "Q1"},
	}, h.c.View().Breadcrumb)

	v, ok := h.persisted(t, state.KeyLastFolder)
	assert.True(t, ok)
	assert.Equal(t, "q1", v)

	require.True(t, h.c.NavigateUp(ctx))
	assert.Equal(t, "work", h.c.View().FolderID)
}

func TestNavigateBreadcrumbFallsBackToRoot(t *testing.T) {
	h := newHarness(t)
	orphan := h.backend.addFolder("orphan", "Orphan", "root")
	orphan.Path = nil

	require.True(t, h.c.NavigateTo(context.Background(), "orphan"))
	assert.Equal(t, []tree.PathEntry{{ID: "root", Name: "My files"}}, h.c.View().Breadcrumb)
	assert.False(t, h.c.NavigateUp(context.Background()))
}

// An older navigation finishing after a newer one must not overwrite it.
func TestNavigateSupersededIsDropped(t *testing.T) {
	h := newHarness(t)
	h.backend.addFolder("slow", "Slow", "root")
	h.backend.addFolder("fast", "Fast", "root")
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	h.backend.beforeGet = func(id string) {
		if id == "slow" {
			once.Do(func() { close(entered) })
			<-release
		}
	}

	result := make(chan bool, 1)
	go func() { result <- h.c.NavigateTo(ctx, "slow") }()

	<-entered
	require.True(t, h.c.NavigateTo(ctx, "fast"))
	close(release)

	assert.False(t, <-result)
	assert.Equal(t, "fast", h.c.View().FolderID)
	assert.Equal(t, 1, h.metrics.count("navigation:superseded"))

	v, _ := h.persisted(t, state.KeyLastFolder)
	assert.Equal(t, "fast", v)
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	backend := newFakeBackend()
	backend.addDoc("d1", "Notes", "root", 2, 1)

	var got []View
	c := New(backend, newFakeEngine(), discardStore{}, Options{OnChange: func(v View) { got = append(got, v) }})
	defer c.Close()

	require.True(t, c.NavigateTo(context.Background(), "root"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"d1"}, entryIDs(got[0].Documents))
}

// discardStore accepts every write and remembers nothing.
type discardStore struct{}

func (discardStore) Get(context.Context, state.Key) (string, bool, error) { return "", false, nil }
func (discardStore) Set(context.Context, state.Key, string) error         { return nil }
func (discardStore) Delete(context.Context, ...state.Key) error           { return nil }
func (discardStore) Close() error                                         { return nil }
