// Package suggest produces typeahead suggestions from the session catalog
// and the remote search collaborator.
package suggest

import (
	"context"
	"strings"
	"unicode/utf8"

	"bookwidget/internal/book"
	"bookwidget/internal/catalog"
	"bookwidget/internal/search"
)

const (
	MinQueryLength = 3
	MaxLocal       = 5
	MaxRemote      = 5
)

// Searcher is the best-effort remote lookup.
type Searcher interface {
	Search(ctx context.Context, query string, field search.Field) []book.Book
}

type Matcher struct {
	searcher Searcher
}

func NewMatcher(searcher Searcher) *Matcher {
	return &Matcher{searcher: searcher}
}

// Suggest returns local catalog matches first, then remote results whose
// title is not already listed. Queries shorter than MinQueryLength yield
// nothing.
func (m *Matcher) Suggest(ctx context.Context, cat *catalog.Catalog, query string, field search.Field) []book.Book {
	local := Local(cat, query)
	if local == nil {
		return []book.Book{}
	}
	return Merge(local, m.Remote(ctx, query, field))
}

// Remote runs the external lookup for query. It does not touch any
// catalog, so callers may run it without holding session state locks.
func (m *Matcher) Remote(ctx context.Context, query string, field search.Field) []book.Book {
	q := strings.TrimSpace(query)
	if m.searcher == nil || utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}
	return m.searcher.Search(ctx, q, field)
}

// Local returns up to MaxLocal catalog matches, or nil for a query that is
// too short.
func Local(cat *catalog.Catalog, query string) []book.Book {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}
	matches := cat.Match(q, MaxLocal)
	if matches == nil {
		matches = []book.Book{}
	}
	return matches
}

// Merge appends up to MaxRemote remote books to local, skipping titles
// already present (case-insensitive).
func Merge(local, remote []book.Book) []book.Book {
	out := make([]book.Book, 0, len(local)+MaxRemote)
	seen := make(map[string]bool, len(local)+len(remote))
	for _, b := range local {
		seen[book.TitleKey(b.Title)] = true
		out = append(out, b)
	}
	for i, b := range remote {
		if i == MaxRemote {
			break
		}
		key := book.TitleKey(b.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}
