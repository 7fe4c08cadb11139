package browser

import (
	"context"
	"strings"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/tree"
	"github.com/marmos91/dittoview/pkg/treeclient"
)

// SetQuery handles a change of the search input.
//
// An empty (after trimming) query cancels any pending search and
// re-navigates to the current folder immediately; search mode is exited
// together with that navigation. If the folder no longer resolves the root
// is shown instead. Any other query is debounced: only the last query typed
// within the debounce window is sent.
func (c *Controller) SetQuery(ctx context.Context, query string) {
	trimmed := strings.TrimSpace(query)

	if trimmed == "" {
		c.debounce.Cancel()

		c.mu.Lock()
		c.query = ""
		folder := c.folderID
		c.mu.Unlock()

		if c.navigate(ctx, folder) != navNotFound || folder == c.opts.RootID {
			return
		}
		logger.Info("browser: folder %s no longer resolves, showing root", folder)
		c.NavigateTo(ctx, c.opts.RootID)
		return
	}

	c.mu.Lock()
	c.query = query
	c.mu.Unlock()

	c.debounce.Schedule(func() {
		c.runSearch(c.ctx, trimmed)
	})
}

// runSearch issues the query and swaps the listing for its results.
func (c *Controller) runSearch(ctx context.Context, query string) {
	c.mu.Lock()
	c.viewSeq++
	seq := c.viewSeq
	c.mu.Unlock()

	resp := c.backend.Search(ctx, query)

	c.mu.Lock()
	if seq != c.viewSeq {
		c.mu.Unlock()
		logger.Debug("browser: search %q superseded", query)
		c.metrics.RecordSearch("superseded")
		return
	}

	// Only the transition into search mode snapshots the user's ordering.
	if !c.searchMode {
		c.searchMode = true
		c.sort.enterSearch()
	}
	c.searchTerm = query
	c.breadcrumb = []tree.PathEntry{{Name: SearchResultsName}}
	c.folders = []tree.SearchResult{}
	c.documents = make([]tree.SearchResult, len(resp.Results))
	copy(c.documents, resp.Results)
	c.resortLocked()
	c.mu.Unlock()

	logger.Debug("browser: search %q returned %d results", query, len(resp.Results))
	c.metrics.RecordSearch("applied")
	c.notify()
}

// OpenEntry opens a listing entry: folders are navigated into, documents
// are opened in the viewer.
//
// A search result with content matches opens at its first matching page with
// the search term active. Anything else opens at the document's last known
// page without a term.
func (c *Controller) OpenEntry(ctx context.Context, e Entry) SessionID {
	if e.Kind == tree.KindFolder {
		c.NavigateTo(ctx, e.ID)
		return 0
	}

	url := treeclient.DocumentURL(e.ID)

	c.mu.Lock()
	term := c.searchTerm
	searching := c.searchMode
	c.mu.Unlock()

	if searching && e.FirstMatchPage > 0 {
		return c.Open(ctx, url, e.FirstMatchPage, term)
	}
	return c.Open(ctx, url, e.CurrentPage, "")
}

// searchThumbnail picks the thumbnail shown for a search result: the first
// matched page when there is one (engine pages are 0-indexed), the default
// document thumbnail otherwise.
func searchThumbnail(r *tree.SearchResult) string {
	if len(r.Matches) > 0 && r.Matches[0].Page > 0 {
		return treeclient.ThumbnailURL(r.ID, r.Matches[0].Page-1)
	}
	return defaultThumbnail(&r.Item)
}

func defaultThumbnail(item *tree.Item) string {
	if item.Thumbnail != "" {
		return item.Thumbnail
	}
	return treeclient.ThumbnailURL(item.ID, 0)
}
