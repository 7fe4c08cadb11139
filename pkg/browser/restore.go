package browser

import (
	"context"
	"strconv"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/state"
)

// Restore resumes from persisted state:
//
//  1. The saved ordering is applied. An unknown field, or the ephemeral
//     relevance field, is cleared and the default ordering kept.
//  2. The last browsed folder is shown. If it no longer resolves, its key is
//     cleared and the root folder is shown instead.
//  3. The last open document is reopened at its last page. If it no longer
//     resolves, the viewer keys are cleared.
func (c *Controller) Restore(ctx context.Context) {
	c.restoreSort(ctx)

	folder, ok := c.get(ctx, state.KeyLastFolder)
	if !ok || folder == "" {
		folder = c.opts.RootID
	}
	if !c.NavigateTo(ctx, folder) && folder != c.opts.RootID {
		logger.Info("browser: last folder %s no longer resolves, showing root", folder)
		c.clear(ctx, state.KeyLastFolder)
		c.NavigateTo(ctx, c.opts.RootID)
	}

	itemID, ok := c.get(ctx, state.KeyOpenItem)
	if !ok || itemID == "" {
		return
	}

	page := 1
	if raw, ok := c.get(ctx, state.KeyOpenPage); ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	if !c.openDocumentAt(ctx, itemID, page) {
		logger.Info("browser: last document %s no longer resolves", itemID)
		c.clear(ctx, state.KeyOpenItem, state.KeyOpenPage)
	}
}

func (c *Controller) restoreSort(ctx context.Context) {
	raw, ok := c.get(ctx, state.KeySortField)
	if !ok {
		return
	}

	field, err := ParseField(raw)
	if err != nil || field == FieldResults {
		logger.Debug("browser: ignoring persisted sort field %q", raw)
		c.clear(ctx, state.KeySortField, state.KeySortDirection)
		return
	}

	desc := true
	if dir, ok := c.get(ctx, state.KeySortDirection); ok && dir == "asc" {
		desc = false
	}

	c.mu.Lock()
	c.sort = newSortController(field, desc)
	c.resortLocked()
	c.mu.Unlock()
}
