// Package headless provides a rendering engine that draws nothing.
//
// It tracks per-session page, zoom and scroll offset, logs every command and
// delivers layout-ready and page-change events asynchronously, in order, the
// way a real renderer would. The CLI uses it to drive the controller without
// a display.
package headless

import (
	"context"
	"fmt"
	"sync"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/browser"
)

type eventKind int

const (
	eventLayoutReady eventKind = iota
	eventPageChange
	eventBarrier
)

type event struct {
	kind eventKind
	id   browser.SessionID
	page int
	done chan struct{}
}

type sessionState struct {
	url    string
	page   int
	zoom   float64
	offset browser.Point
}

// Engine is a display-less browser.Engine.
type Engine struct {
	mu       sync.Mutex
	sink     browser.EventSink
	sessions map[browser.SessionID]*sessionState

	events   chan event
	stopOnce sync.Once
	done     chan struct{}
}

// New creates an engine and starts its event dispatcher.
func New() *Engine {
	e := &Engine{
		sessions: make(map[browser.SessionID]*sessionState),
		events:   make(chan event, 64),
		done:     make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// Shutdown stops event delivery. Pending events are dropped.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		close(e.done)
	})
}

// Sync blocks until every event queued so far has been delivered.
func (e *Engine) Sync() {
	done := make(chan struct{})
	if !e.emit(event{kind: eventBarrier, done: done}) {
		return
	}
	select {
	case <-done:
	case <-e.done:
	}
}

func (e *Engine) dispatch() {
	for {
		select {
		case <-e.done:
			return
		case ev := <-e.events:
			e.mu.Lock()
			sink := e.sink
			e.mu.Unlock()

			switch ev.kind {
			case eventBarrier:
				close(ev.done)
			case eventLayoutReady:
				if sink != nil {
					sink.HandleLayoutReady(ev.id)
				}
			case eventPageChange:
				if sink != nil {
					sink.HandlePageChange(ev.id, ev.page)
				}
			}
		}
	}
}

func (e *Engine) emit(ev event) bool {
	select {
	case <-e.done:
		return false
	case e.events <- ev:
		return true
	}
}

// Subscribe implements browser.Engine.
func (e *Engine) Subscribe(sink browser.EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
}

// Open implements browser.Engine. The first layout pass completes
// immediately.
func (e *Engine) Open(ctx context.Context, id browser.SessionID, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	if _, exists := e.sessions[id]; exists {
		e.mu.Unlock()
		return fmt.Errorf("session %d already open", id)
	}
	e.sessions[id] = &sessionState{url: url, page: 1, zoom: 1}
	e.mu.Unlock()

	logger.Info("engine: [%d] open %s", id, url)
	e.emit(event{kind: eventLayoutReady, id: id})
	return nil
}

// Close implements browser.Engine.
func (e *Engine) Close(id browser.SessionID) {
	e.mu.Lock()
	_, ok := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()

	if ok {
		logger.Info("engine: [%d] close", id)
	}
}

func (e *Engine) session(id browser.SessionID) (*sessionState, bool) {
	s, ok := e.sessions[id]
	if !ok {
		logger.Debug("engine: command for unknown session %d ignored", id)
	}
	return s, ok
}

// ScrollToPage implements browser.Engine. The new page is reported back as
// a page-change event.
func (e *Engine) ScrollToPage(id browser.SessionID, page int) {
	e.mu.Lock()
	s, ok := e.session(id)
	if ok {
		s.page = page
		s.offset = browser.Point{}
	}
	e.mu.Unlock()

	if !ok {
		return
	}
	logger.Info("engine: [%d] scroll to page %d", id, page)
	e.emit(event{kind: eventPageChange, id: id, page: page})
}

// Search implements browser.Engine.
func (e *Engine) Search(id browser.SessionID, term string) {
	e.mu.Lock()
	_, ok := e.session(id)
	e.mu.Unlock()

	if ok {
		logger.Info("engine: [%d] search %q (results panel shown)", id, term)
	}
}

// ZoomLevel implements browser.Engine.
func (e *Engine) ZoomLevel(id browser.SessionID) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return 0, false
	}
	return s.zoom, true
}

// RequestZoom implements browser.Engine. The document is relaid out and a
// layout-ready event follows.
func (e *Engine) RequestZoom(id browser.SessionID, level float64) {
	e.mu.Lock()
	s, ok := e.session(id)
	if ok {
		s.zoom = level
	}
	e.mu.Unlock()

	if !ok {
		return
	}
	logger.Info("engine: [%d] zoom %.0f%%", id, level*100)
	e.emit(event{kind: eventLayoutReady, id: id})
}

// ScrollOffset implements browser.Engine.
func (e *Engine) ScrollOffset(id browser.SessionID) (browser.Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return browser.Point{}, false
	}
	return s.offset, true
}

// SetScrollOffset implements browser.Engine.
func (e *Engine) SetScrollOffset(id browser.SessionID, offset browser.Point) {
	e.mu.Lock()
	s, ok := e.session(id)
	if ok {
		s.offset = offset
	}
	e.mu.Unlock()

	if ok {
		logger.Info("engine: [%d] scroll offset %.0f,%.0f", id, offset.X, offset.Y)
	}
}

// Page returns the current page of a session.
func (e *Engine) Page(id browser.SessionID) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return 0, false
	}
	return s.page, true
}
