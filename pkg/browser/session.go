package browser

// layoutPhase is the position of a session in its layout-ready state
// machine. Phases only advance, and only on layout-ready signals for the
// owning session.
type layoutPhase int

const (
	// phaseOpened: waiting for the first layout-ready signal.
	phaseOpened layoutPhase = iota

	// phaseZoomRequested: the captured zoom was requested; the relayout it
	// triggers will signal layout-ready again.
	phaseZoomRequested

	// phaseScrollApplied: the captured scroll offset was applied.
	phaseScrollApplied

	// phaseSettled: the initial search or scroll-to-page was issued, or
	// there was nothing to do.
	phaseSettled
)

func (p layoutPhase) String() string {
	switch p {
	case phaseOpened:
		return "opened"
	case phaseZoomRequested:
		return "zoom_requested"
	case phaseScrollApplied:
		return "scroll_applied"
	case phaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// viewport is a captured zoom level and scroll offset.
type viewport struct {
	zoom   float64
	offset Point
}

// layoutPlan is what a session does as its layout becomes ready.
//
// At most one of searchTerm, scrollPage and restore is acted on: restore
// only exists on reconciliation reopens (page 1, no term), and a search term
// takes precedence over a page.
type layoutPlan struct {
	phase      layoutPhase
	searchTerm string
	scrollPage int
	restore    *viewport
}

func newLayoutPlan(page int, term string, restore *viewport) layoutPlan {
	return layoutPlan{phase: phaseOpened, searchTerm: term, scrollPage: page, restore: restore}
}

// layoutAction is the engine command to issue after advancing a plan.
type layoutAction func(e Engine, id SessionID)

// advance moves the plan one step for a layout-ready signal and returns the
// command to issue, or nil.
func (p *layoutPlan) advance() layoutAction {
	switch p.phase {
	case phaseOpened:
		switch {
		case p.restore != nil:
			p.phase = phaseZoomRequested
			zoom := p.restore.zoom
			return func(e Engine, id SessionID) { e.RequestZoom(id, zoom) }
		case p.searchTerm != "":
			p.phase = phaseSettled
			term := p.searchTerm
			return func(e Engine, id SessionID) { e.Search(id, term) }
		case p.scrollPage > 1:
			p.phase = phaseSettled
			page := p.scrollPage
			return func(e Engine, id SessionID) { e.ScrollToPage(id, page) }
		default:
			p.phase = phaseSettled
			return nil
		}

	case phaseZoomRequested:
		p.phase = phaseScrollApplied
		offset := p.restore.offset
		return func(e Engine, id SessionID) { e.SetScrollOffset(id, offset) }
	}

	return nil
}

// session is one open-document view.
type session struct {
	id     SessionID
	itemID string
	url    string
	page   int

	// token is the remote modification token captured at open, "" if the
	// probe has not succeeded yet.
	token string

	plan layoutPlan
}
