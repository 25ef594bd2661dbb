// Package view derives what is displayed from a note collection: filtering,
// ordering and the category list. Everything here is pure.
package view

import (
	"slices"
	"strings"

	"github.com/aretw0/notehub/pkg/core"
)

// Query holds the user-chosen predicates. Zero values disable a predicate;
// enabled predicates are combined with AND.
type Query struct {
	Search     string // case-insensitive substring of title or content
	Category   string // exact match
	PinnedOnly bool
	Where      *Expr // optional expression filter
}

// Apply filters notes by q and orders the result: pinned first, then most
// recently updated first. The sort is stable, so ties keep input order.
// The input slice is not modified.
func Apply(notes []core.Note, q Query) []core.Note {
	search := strings.ToLower(q.Search)

	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), search) &&
			!strings.Contains(strings.ToLower(n.Content), search) {
			continue
		}
		if q.Category != "" && n.Category != q.Category {
			continue
		}
		if q.PinnedOnly && !n.IsPinned {
			continue
		}
		if q.Where != nil && !q.Where.Match(n) {
			continue
		}
		out = append(out, n)
	}

	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b core.Note) int {
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	return b.UpdatedAt.Compare(a.UpdatedAt)
}

// Categories returns the distinct categories across notes, ascending.
func Categories(notes []core.Note) []string {
	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		seen[n.Category] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// Summary is the dashboard header: how many notes, how many pinned, and
// how they spread over categories.
type Summary struct {
	Total      int            `json:"total" yaml:"total"`
	Pinned     int            `json:"pinned" yaml:"pinned"`
	ByCategory map[string]int `json:"byCategory" yaml:"byCategory"`
	ByColor    map[string]int `json:"byColor" yaml:"byColor"`
}

// Stats summarizes notes.
func Stats(notes []core.Note) Summary {
	s := Summary{
		Total:      len(notes),
		ByCategory: make(map[string]int),
		ByColor:    make(map[string]int),
	}
	for _, n := range notes {
		if n.IsPinned {
			s.Pinned++
		}
		s.ByCategory[n.Category]++
		s.ByColor[string(n.Color)]++
	}
	return s
}
