package browser

import (
	"fmt"

	"github.com/marmos91/dittoview/pkg/tree"
)

// Entry is one row of the listing as presented to the user.
type Entry struct {
	ID        string
	Name      string
	Kind      tree.Kind
	Type      tree.Type
	Subtitle  string
	Thumbnail string

	// Badge is "title match" for search results that only matched by name.
	Badge string

	// CurrentPage is the document's last known page (1-indexed).
	CurrentPage int

	// FirstMatchPage is the first content match page (1-indexed), or 0.
	FirstMatchPage int

	Hits       int
	TitleMatch bool
}

// SessionView describes the open viewer session.
type SessionView struct {
	ID         SessionID
	ItemID     string
	URL        string
	Page       int
	SearchTerm string
	Token      string
	Phase      string
}

// View is an immutable snapshot of the controller state.
type View struct {
	FolderID   string
	Breadcrumb []tree.PathEntry
	Folders    []Entry
	Documents  []Entry
	Sort       SortState
	SearchMode bool
	Query      string

	// Session is nil when no document is open.
	Session *SessionView
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		FolderID:   c.folderID,
		Breadcrumb: append([]tree.PathEntry(nil), c.breadcrumb...),
		Folders:    make([]Entry, 0, len(c.folders)),
		Documents:  make([]Entry, 0, len(c.documents)),
		Sort:       c.sort.state(),
		SearchMode: c.searchMode,
		Query:      c.query,
	}

	for i := range c.folders {
		v.Folders = append(v.Folders, entryFor(&c.folders[i], false))
	}
	for i := range c.documents {
		v.Documents = append(v.Documents, entryFor(&c.documents[i], c.searchMode))
	}

	if s := c.session; s != nil {
		v.Session = &SessionView{
			ID:         s.id,
			ItemID:     s.itemID,
			URL:        s.url,
			Page:       s.page,
			SearchTerm: s.plan.searchTerm,
			Token:      s.token,
			Phase:      s.plan.phase.String(),
		}
	}
	return v
}

func entryFor(r *tree.SearchResult, searching bool) Entry {
	e := Entry{
		ID:          r.ID,
		Name:        r.Name,
		Kind:        r.Kind(),
		Type:        r.Type,
		CurrentPage: r.CurrentPage,
		Hits:        r.Hits,
		TitleMatch:  r.TitleMatch,
	}

	if e.Kind == tree.KindFolder {
		e.Subtitle = folderSubtitle(r.ItemCount)
		return e
	}

	if searching {
		e.Thumbnail = searchThumbnail(r)
		if len(r.Matches) > 0 {
			e.FirstMatchPage = r.Matches[0].Page
		}
		if r.Hits == 0 && r.TitleMatch {
			e.Badge = "title match"
		}
		e.Subtitle = searchSubtitle(r)
		return e
	}

	e.Thumbnail = defaultThumbnail(&r.Item)
	e.Subtitle = documentSubtitle(&r.Item)
	return e
}

func folderSubtitle(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// documentSubtitle is "Page X of Y" for notebooks and PDFs and "N% read"
// for e-books.
func documentSubtitle(item *tree.Item) string {
	if item.PageCount <= 0 {
		return ""
	}
	page := max(item.CurrentPage, 1)
	if item.Type == tree.TypeEPUB {
		return fmt.Sprintf("%d%% read", page*100/item.PageCount)
	}
	return fmt.Sprintf("Page %d of %d", page, item.PageCount)
}

func searchSubtitle(r *tree.SearchResult) string {
	switch {
	case r.Hits == 1:
		return "1 hit"
	case r.Hits > 1:
		return fmt.Sprintf("%d hits", r.Hits)
	case r.TitleMatch:
		return "Title match"
	}
	return ""
}
