package browser

import (
	"context"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/state"
	"github.com/marmos91/dittoview/pkg/treeclient"
)

// Open opens url in the viewer under a new session.
//
// The new session is opened before the previous one is closed. The item id
// and page are persisted immediately, then the document's modification
// token is probed for later reconciliation.
//
// Once the engine reports the layout ready, a non-empty searchTerm is
// submitted as a full-document search; otherwise a page beyond the first is
// scrolled to.
//
// Returns the new session id, or 0 if the engine refused to open.
func (c *Controller) Open(ctx context.Context, url string, page int, searchTerm string) SessionID {
	return c.openSession(ctx, url, page, searchTerm, "", nil)
}

// OpenDocument opens a document by item id at its last known page.
//
// Returns false if the item does not resolve or is a folder.
func (c *Controller) OpenDocument(ctx context.Context, id string) bool {
	return c.openDocumentAt(ctx, id, 0)
}

func (c *Controller) openDocumentAt(ctx context.Context, id string, page int) bool {
	item := c.backend.GetItem(ctx, id)
	if item == nil || item.IsFolder() {
		return false
	}
	if page <= 0 {
		page = item.CurrentPage
	}
	return c.Open(ctx, treeclient.DocumentURL(id), page, "") != 0
}

// openSession is shared by user opens and reconciliation reopens.
//
// knownToken skips the modification probe when the caller already has a
// fresh token. restore enables the two-phase viewport restore.
func (c *Controller) openSession(ctx context.Context, url string, page int, searchTerm, knownToken string, restore *viewport) SessionID {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.lastSession++
	s := &session{
		id:     c.lastSession,
		itemID: treeclient.ItemIDFromURL(url),
		url:    url,
		page:   page,
		token:  knownToken,
		plan:   newLayoutPlan(page, searchTerm, restore),
	}
	prev := c.session
	c.session = s
	c.mu.Unlock()

	if err := c.engine.Open(ctx, s.id, url); err != nil {
		logger.Warn("browser: engine failed to open %s: %v", url, err)
		c.mu.Lock()
		if c.session == s {
			c.session = prev
		}
		c.mu.Unlock()
		return 0
	}

	if prev != nil {
		c.engine.Close(prev.id)
	}

	c.mu.Lock()
	if c.session == s {
		c.put(ctx, state.KeyOpenItem, s.itemID)
		c.putInt(ctx, state.KeyOpenPage, page)
	}
	c.mu.Unlock()

	logger.Debug("browser: session %d opened %s at page %d", s.id, url, page)
	c.metrics.RecordSessionOpened()

	if knownToken == "" {
		c.captureToken(ctx, s)
	}

	c.notify()
	return s.id
}

// captureToken probes the document and caches its token on s if s is still
// the current session.
func (c *Controller) captureToken(ctx context.Context, s *session) {
	token, err := c.backend.ProbeModified(ctx, s.url)
	if err != nil {
		logger.Debug("browser: probe %s: %v", s.url, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == s && s.token == "" {
		s.token = token
	}
}

// CloseViewer closes the open session, clears its persisted keys and drops
// the cached modification token.
func (c *Controller) CloseViewer(ctx context.Context) {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.clear(ctx, state.KeyOpenItem, state.KeyOpenPage)
	c.mu.Unlock()

	if s == nil {
		return
	}
	c.engine.Close(s.id)
	logger.Debug("browser: session %d closed", s.id)
	c.notify()
}

// closeSessionIfCurrent closes session id only if it is still current.
func (c *Controller) closeSessionIfCurrent(ctx context.Context, id SessionID) bool {
	c.mu.Lock()
	s := c.session
	if s == nil || s.id != id {
		c.mu.Unlock()
		return false
	}
	c.session = nil
	c.clear(ctx, state.KeyOpenItem, state.KeyOpenPage)
	c.mu.Unlock()

	c.engine.Close(id)
	c.notify()
	return true
}

// HandlePageChange records the page the engine reports for a session.
// Events from sessions that are no longer current are ignored.
func (c *Controller) HandlePageChange(id SessionID, page int) {
	if page < 1 {
		return
	}

	c.mu.Lock()
	s := c.session
	if s == nil || s.id != id {
		c.mu.Unlock()
		logger.Debug("browser: page change from stale session %d ignored", id)
		return
	}
	s.page = page
	c.putInt(c.ctx, state.KeyOpenPage, page)
	c.mu.Unlock()
}

// HandleLayoutReady advances the current session's layout plan. Events from
// sessions that are no longer current are ignored, and once a plan is
// complete further signals are no-ops.
func (c *Controller) HandleLayoutReady(id SessionID) {
	c.mu.Lock()
	s := c.session
	if s == nil || s.id != id {
		c.mu.Unlock()
		return
	}
	action := s.plan.advance()
	phase := s.plan.phase
	c.mu.Unlock()

	if action == nil {
		return
	}
	logger.Debug("browser: session %d layout ready, now %s", id, phase)
	action(c.engine, id)
}
