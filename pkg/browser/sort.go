package browser

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/marmos91/dittoview/pkg/tree"
	"golang.org/x/text/cases"
)

// Field is a sort field.
type Field string

const (
	FieldModified Field = "modified"
	FieldOpened   Field = "opened"
	FieldCreated  Field = "created"
	FieldSize     Field = "size"
	FieldPages    Field = "pages"
	FieldAlpha    Field = "alpha"

	// FieldResults orders search results by hit count. It only exists
	// while search mode is active and is never persisted.
	FieldResults Field = "results"
)

// ErrResultsOutsideSearch is returned when the relevance field is selected
// outside search mode.
var ErrResultsOutsideSearch = errors.New("sort by results is only available while searching")

// Fields lists the user-selectable fields outside search mode.
var Fields = []Field{FieldModified, FieldOpened, FieldCreated, FieldSize, FieldPages, FieldAlpha}

// ParseField parses a field name. "results" is accepted; callers decide
// whether it is valid in context.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if f == FieldResults || slices.Contains(Fields, f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// SortState is the active ordering.
type SortState struct {
	Field      Field
	Descending bool

	// Ephemeral is true while the search relevance ordering is active.
	Ephemeral bool
}

func (s SortState) direction() string {
	if s.Descending {
		return "desc"
	}
	return "asc"
}

// sortController owns the active ordering and the snapshot taken when
// search mode is entered.
type sortController struct {
	field    Field
	desc     bool
	snapshot *SortState
}

func newSortController(field Field, desc bool) sortController {
	return sortController{field: field, desc: desc}
}

func (s *sortController) state() SortState {
	return SortState{Field: s.field, Descending: s.desc, Ephemeral: s.field == FieldResults}
}

// selectField applies a user click: a new field starts ascending, the active
// field toggles direction.
func (s *sortController) selectField(f Field) {
	if f == s.field {
		s.desc = !s.desc
		return
	}
	s.field = f
	s.desc = false
}

// persistable reports whether the active ordering may be written to durable
// state.
func (s *sortController) persistable() bool {
	return s.field != FieldResults
}

// enterSearch snapshots the user's ordering and switches to relevance,
// descending. Must only be called on the transition into search mode.
func (s *sortController) enterSearch() {
	snap := SortState{Field: s.field, Descending: s.desc}
	s.snapshot = &snap
	s.field = FieldResults
	s.desc = true
}

// exitSearch restores and discards the snapshot.
func (s *sortController) exitSearch() {
	if s.snapshot == nil {
		return
	}
	s.field = s.snapshot.Field
	s.desc = s.snapshot.Descending
	s.snapshot = nil
}

// sortListing orders list in place. The sort is stable for every field and
// both directions.
func sortListing(list []tree.SearchResult, st SortState) {
	caser := cases.Fold()
	key := func(r *tree.SearchResult) string { return caser.String(r.Name) }

	slices.SortStableFunc(list, func(a, b tree.SearchResult) int {
		var c int
		switch st.Field {
		case FieldModified:
			c = cmp.Compare(a.LastModified.Millis(), b.LastModified.Millis())
		case FieldOpened:
			c = cmp.Compare(a.LastOpened.Millis(), b.LastOpened.Millis())
		case FieldCreated:
			c = cmp.Compare(a.DateCreated.Millis(), b.DateCreated.Millis())
		case FieldSize:
			c = cmp.Compare(a.Size(), b.Size())
		case FieldPages:
			c = cmp.Compare(a.Pages(), b.Pages())
		case FieldAlpha:
			c = strings.Compare(key(&a), key(&b))
		case FieldResults:
			c = cmp.Compare(a.Hits, b.Hits)
		}
		if st.Descending {
			return -c
		}
		return c
	})
}
