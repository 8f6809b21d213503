package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Shareable parameter names.
const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamPage     = "page"
)

var ownParams = []string{ParamSearch, ParamCategory, ParamSort, ParamPage}

// Encode writes s into a copy of base. Keys that do not belong to the query state are kept
// as they are, so links carrying unrelated parameters survive a round trip. Fields at their
// default value are omitted.
func Encode(s State, base url.Values) url.Values {
	out := make(url.Values, len(base)+len(ownParams))
	for key, values := range base {
		out[key] = append([]string(nil), values...)
	}
	for _, key := range ownParams {
		out.Del(key)
	}

	if s.SearchTerm != "" {
		out.Set(ParamSearch, s.SearchTerm)
	}
	if s.Category != "" {
		out.Set(ParamCategory, s.Category)
	}
	if key := s.SortKey(); key != "" {
		out.Set(ParamSort, key)
	}
	if s.Page > 1 {
		out.Set(ParamPage, strconv.Itoa(s.Page))
	}

	return out
}

// Decode reads the query state out of values. Missing or malformed fields fall back to their
// defaults; unknown keys are ignored. A page beyond MaxPage counts as malformed.
func Decode(values url.Values) State {
	s := Default()

	s.SearchTerm = values.Get(ParamSearch)
	s.Category = values.Get(ParamCategory)

	if field, direction, ok := parseSortKey(values.Get(ParamSort)); ok {
		s.SortField = field
		s.SortDirection = direction
	}

	if raw := strings.TrimSpace(values.Get(ParamPage)); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 && page <= MaxPage {
			s.Page = page
		}
	}

	return s
}

// String renders the canonical query string for s.
func String(s State) string {
	return Encode(s, nil).Encode()
}
