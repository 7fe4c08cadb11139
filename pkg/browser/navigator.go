package browser

import (
	"context"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/state"
	"github.com/marmos91/dittoview/pkg/tree"
	"golang.org/x/sync/errgroup"
)

// NavigateTo shows folder id.
//
// The item lookup and the child listing are fetched concurrently, then the
// children's metadata is fetched in one batch. Children missing from the
// batch are dropped. If the folder itself cannot be resolved the current
// view is left untouched.
//
// On success the breadcrumb is replaced, the folder is persisted as the
// last browsed folder and search mode is exited.
//
// Returns true if the navigation was applied. A navigation superseded by a
// later navigation or search returns false.
func (c *Controller) NavigateTo(ctx context.Context, id string) bool {
	return c.navigate(ctx, id) == navApplied
}

type navOutcome string

const (
	navApplied    navOutcome = "applied"
	navNotFound   navOutcome = "not_found"
	navSuperseded navOutcome = "superseded"
)

func (c *Controller) navigate(ctx context.Context, id string) navOutcome {
	c.mu.Lock()
	c.viewSeq++
	seq := c.viewSeq
	c.mu.Unlock()

	var (
		item     *tree.Item
		childIDs []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		item = c.backend.GetItem(gctx, id)
		return nil
	})
	g.Go(func() error {
		childIDs = c.backend.GetChildIDs(gctx, id)
		return nil
	})
	_ = g.Wait()

	if item == nil {
		logger.Debug("browser: navigate %s: item not found, keeping current view", id)
		c.metrics.RecordNavigation(string(navNotFound))
		return navNotFound
	}

	batch := c.backend.GetBatch(ctx, childIDs)

	folders := make([]tree.SearchResult, 0, len(childIDs))
	documents := make([]tree.SearchResult, 0, len(childIDs))
	for _, childID := range childIDs {
		child, ok := batch[childID]
		if !ok {
			continue
		}
		if child.IsFolder() {
			folders = append(folders, tree.SearchResult{Item: *child})
		} else {
			documents = append(documents, tree.SearchResult{Item: *child})
		}
	}
	if dropped := len(childIDs) - len(folders) - len(documents); dropped > 0 {
		logger.Debug("browser: navigate %s: %d children missing from batch", id, dropped)
	}

	c.mu.Lock()
	if seq != c.viewSeq {
		c.mu.Unlock()
		logger.Debug("browser: navigate %s superseded", id)
		c.metrics.RecordNavigation(string(navSuperseded))
		return navSuperseded
	}

	if c.exitSearchLocked(ctx) {
		c.debounce.Cancel()
	}

	c.folderID = id
	c.breadcrumb = c.breadcrumbFor(item)
	c.folders = folders
	c.documents = documents
	c.resortLocked()
	c.put(ctx, state.KeyLastFolder, id)
	c.mu.Unlock()

	logger.Debug("browser: navigated to %s (%d folders, %d documents)", id, len(folders), len(documents))
	c.metrics.RecordNavigation(string(navApplied))
	c.notify()
	return navApplied
}

// NavigateUp navigates to the parent of the current folder. Returns false
// at the root or while searching.
func (c *Controller) NavigateUp(ctx context.Context) bool {
	c.mu.Lock()
	if c.searchMode || len(c.breadcrumb) < 2 {
		c.mu.Unlock()
		return false
	}
	parent := c.breadcrumb[len(c.breadcrumb)-2].ID
	c.mu.Unlock()

	return c.NavigateTo(ctx, parent)
}

// Refresh re-runs navigation for the current folder.
func (c *Controller) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	id := c.folderID
	c.mu.Unlock()

	return c.NavigateTo(ctx, id)
}

// breadcrumbFor returns the item's own path, or a single root entry when the
// backend did not supply one.
func (c *Controller) breadcrumbFor(item *tree.Item) []tree.PathEntry {
	if len(item.Path) == 0 {
		return []tree.PathEntry{{ID: c.opts.RootID, Name: c.opts.RootName}}
	}
	path := make([]tree.PathEntry, len(item.Path))
	copy(path, item.Path)
	return path
}
