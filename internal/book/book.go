package book

import (
	"strings"
)

// UnknownGenre is the genre assigned to books whose metadata carries none.
const UnknownGenre = "Unknown"

// Book represents a book entity as known to the catalog.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Genre       string   `json:"genre"`
	Features    []string `json:"features"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Score       int      `json:"score,omitempty"`
}

// UserBook is a book on the user's reading list.
type UserBook struct {
	Book
	UserBookID string `json:"user_book_id"`
	Rating     int    `json:"rating"`
}

// Normalize returns a copy of b with defaults applied: trimmed strings,
// "Unknown" for an empty genre and a non-nil, de-duplicated feature set.
func Normalize(b Book) Book {
	b.ID = strings.TrimSpace(b.ID)
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Genre = strings.TrimSpace(b.Genre)
	if b.Genre == "" {
		b.Genre = UnknownGenre
	}
	b.CoverURL = strings.TrimSpace(b.CoverURL)
	b.Description = strings.TrimSpace(b.Description)

	features := make([]string, 0, len(b.Features))
	seen := make(map[string]bool, len(b.Features))
	for _, f := range b.Features {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		features = append(features, f)
	}
	b.Features = features
	return b
}

// TitleKey is the case-insensitive identity used to decide whether two
// books are the same title.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// HasTitle reports whether list contains a book with the given title,
// compared case-insensitively.
func HasTitle(list []UserBook, title string) bool {
	key := TitleKey(title)
	for _, ub := range list {
		if TitleKey(ub.Title) == key {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of b so callers can annotate it freely.
func Clone(b Book) Book {
	if b.Features != nil {
		b.Features = append([]string(nil), b.Features...)
	}
	return b
}
