package metrics

import (
	"github.com/marmos91/dittoview/pkg/browser"
)

// Status is the browser state served at /status.
type Status struct {
	Folder     string `json:"folder"`
	SearchMode bool   `json:"search_mode"`
	Query      string `json:"query,omitempty"`

	// Generation is the last backend generation seen by live sync; nil
	// before the first poll or when live sync is off.
	Generation *int64 `json:"generation"`

	// Session is nil when no document is open.
	Session *SessionStatus `json:"session"`
}

// SessionStatus describes the open viewer session.
type SessionStatus struct {
	ID     uint64 `json:"id"`
	ItemID string `json:"item_id"`
	Page   int    `json:"page"`
	Phase  string `json:"phase"`
	Token  string `json:"token,omitempty"`
}

// StatusFunc produces a Status snapshot. It is called once per request.
type StatusFunc func() Status

// BrowserStatus reports the state of c. live may be nil when live sync is
// disabled.
func BrowserStatus(c *browser.Controller, live *browser.LiveSync) StatusFunc {
	return func() Status {
		v := c.View()
		st := Status{
			Folder:     v.FolderID,
			SearchMode: v.SearchMode,
			Query:      v.Query,
		}

		if live != nil {
			if gen, seen := live.Known(); seen {
				g := int64(gen)
				st.Generation = &g
			}
		}

		if s := v.Session; s != nil {
			st.Session = &SessionStatus{
				ID:     uint64(s.ID),
				ItemID: s.ItemID,
				Page:   s.Page,
				Phase:  s.Phase,
				Token:  s.Token,
			}
		}
		return st
	}
}
