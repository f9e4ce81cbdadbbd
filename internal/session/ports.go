package session

import (
	"context"
	"errors"

	"bookwidget/internal/book"
	"bookwidget/internal/readinglist"
	"bookwidget/internal/search"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrAlreadyListed = readinglist.ErrAlreadyListed
	ErrInvalidRating = readinglist.ErrInvalidRating
	ErrEntryNotFound = readinglist.ErrEntryNotFound
	ErrInvalidID     = errors.New("invalid session id")
	ErrUnavailable   = errors.New("reading list unavailable")
)

// CorruptNotice is surfaced once when a stored reading list could not be
// read and the session started empty.
const CorruptNotice = "Your saved reading list could not be read and has been reset."

// BookSearcher resolves a typed title to a full record when adding a book
// that is not in the catalog.
type BookSearcher interface {
	Search(ctx context.Context, query string, field search.Field) []book.Book
}

// AddInput is a request to put a book on the reading list. BookID, when
// set, must name a catalog entry; otherwise Title is resolved against the
// catalog and then the search collaborator.
type AddInput struct {
	BookID string
	Title  string
	Author string
	Rating int
}
