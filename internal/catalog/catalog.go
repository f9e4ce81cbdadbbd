package catalog

import (
	"strings"

	"bookwidget/internal/book"
)

// Catalog is the append-only collection of books known to a session.
// Titles are unique by exact match; iteration order is insertion order.
// A Catalog is not safe for concurrent use; the owning session serialises
// access.
type Catalog struct {
	books  []book.Book
	titles map[string]struct{}
}

// New returns a catalog holding the given books, skipping duplicate titles.
func New(books ...book.Book) *Catalog {
	c := &Catalog{titles: make(map[string]struct{}, len(books))}
	c.Add(books...)
	return c
}

// NewSeeded returns a catalog pre-populated with the static seed set.
func NewSeeded() *Catalog {
	return New(Seed()...)
}

// Add appends books whose exact title is not yet present and returns the
// ones that were actually added.
func (c *Catalog) Add(books ...book.Book) []book.Book {
	var added []book.Book
	for _, b := range books {
		b = book.Normalize(b)
		if b.Title == "" {
			continue
		}
		if _, ok := c.titles[b.Title]; ok {
			continue
		}
		b.Score = 0
		c.titles[b.Title] = struct{}{}
		c.books = append(c.books, b)
		added = append(added, b)
	}
	return added
}

// Contains reports whether a book with exactly this title is present.
func (c *Catalog) Contains(title string) bool {
	_, ok := c.titles[strings.TrimSpace(title)]
	return ok
}

// Len returns the number of books in the catalog.
func (c *Catalog) Len() int {
	return len(c.books)
}

// ByID returns the catalog book with the given id.
func (c *Catalog) ByID(id string) (book.Book, bool) {
	for _, b := range c.books {
		if b.ID == id {
			return book.Clone(b), true
		}
	}
	return book.Book{}, false
}

// ByTitle returns the first catalog book whose title matches
// case-insensitively.
func (c *Catalog) ByTitle(title string) (book.Book, bool) {
	key := book.TitleKey(title)
	for _, b := range c.books {
		if book.TitleKey(b.Title) == key {
			return book.Clone(b), true
		}
	}
	return book.Book{}, false
}

// Books returns a copy of the catalog contents in insertion order.
func (c *Catalog) Books() []book.Book {
	out := make([]book.Book, len(c.books))
	for i, b := range c.books {
		out[i] = book.Clone(b)
	}
	return out
}

// Match returns up to limit books whose title or author contains q,
// compared case-insensitively.
func (c *Catalog) Match(q string, limit int) []book.Book {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" || limit <= 0 {
		return nil
	}
	var out []book.Book
	for _, b := range c.books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, book.Clone(b))
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
