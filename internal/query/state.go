package query

import (
	"fmt"
	"math"
	"strings"
)

type SortField string

func (f SortField) String() string {
	return string(f)
}

const (
	SortNone  SortField = ""
	SortPrice SortField = "price"
)

type SortDirection string

func (d SortDirection) String() string {
	return string(d)
}

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// State is the normalized catalog query. The zero value is not valid, use Default.
type State struct {
	SearchTerm    string        `json:"search_term"`
	Category      string        `json:"category"`
	SortField     SortField     `json:"sort_field"`
	SortDirection SortDirection `json:"sort_direction"`
	Page          int           `json:"page"`
}

func Default() State {
	return State{
		SortField:     SortNone,
		SortDirection: Ascending,
		Page:          1,
	}
}

// Reset returns the state with every filter cleared.
func (s State) Reset() State {
	return Default()
}

func (s State) WithSearchTerm(term string) State {
	if term == s.SearchTerm {
		return s
	}
	s.SearchTerm = term
	s.Page = 1
	return s
}

func (s State) WithCategory(category string) State {
	if category == s.Category {
		return s
	}
	s.Category = category
	s.Page = 1
	return s
}

// WithSort changes the ordering. SortNone always carries Ascending so that every reachable
// state has exactly one encoding.
func (s State) WithSort(field SortField, direction SortDirection) State {
	if field == SortNone || (direction != Ascending && direction != Descending) {
		direction = Ascending
	}
	if field == s.SortField && direction == s.SortDirection {
		return s
	}
	s.SortField = field
	s.SortDirection = direction
	s.Page = 1
	return s
}

// MaxPage is the deepest page a query can address. Deeper pages would push the catalog
// offset past what an int holds.
const MaxPage = 100_000

// WithPage moves to page, kept within [1, MaxPage].
func (s State) WithPage(page int) State {
	s.Page = min(max(1, page), MaxPage)
	return s
}

func (s State) NextPage() State {
	return s.WithPage(s.Page + 1)
}

func (s State) PreviousPage() State {
	return s.WithPage(s.Page - 1)
}

func (s State) IsSorted() bool {
	return s.SortField != SortNone
}

// Offset is the number of items that precede the current page.
func (s State) Offset(pageSize int) int {
	page := min(max(1, s.Page), MaxPage)
	if pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// SortKey is the "<field>_<direction>" form used in shareable links, empty when unsorted.
func (s State) SortKey() string {
	if !s.IsSorted() {
		return ""
	}
	return fmt.Sprintf("%s_%s", s.SortField, s.SortDirection)
}

func parseSortKey(raw string) (SortField, SortDirection, bool) {
	field, direction, found := strings.Cut(raw, "_")
	if !found {
		return SortNone, Ascending, false
	}

	switch SortField(field) {
	case SortPrice:
	default:
		return SortNone, Ascending, false
	}

	switch SortDirection(direction) {
	case Ascending, Descending:
	default:
		return SortNone, Ascending, false
	}

	return SortField(field), SortDirection(direction), true
}
