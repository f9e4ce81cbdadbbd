package readinglist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bookwidget/internal/book"
)

var (
	// ErrNotFound is returned by Load when nothing is stored for a session.
	ErrNotFound = errors.New("reading list not found")
	// ErrCorrupt is returned by Load when the stored list cannot be parsed.
	ErrCorrupt = errors.New("reading list is corrupt")
	// ErrInvalidRating is returned for ratings outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrAlreadyListed is returned when adding a title that is already on
	// the list.
	ErrAlreadyListed = errors.New("book already on reading list")
	// ErrEntryNotFound is returned when removing an unknown entry.
	ErrEntryNotFound = errors.New("reading list entry not found")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Repository persists a session's reading list.
type Repository interface {
	Load(ctx context.Context, sessionID string) ([]book.UserBook, error)
	Save(ctx context.Context, sessionID string, books []book.UserBook) error
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	return nil
}

// Add returns a new list with b appended as a UserBook. The entry id is
// the acquisition time in Unix milliseconds, bumped past any id already
// on the list.
func Add(list []book.UserBook, b book.Book, rating int, now time.Time) ([]book.UserBook, book.UserBook, error) {
	if err := ValidateRating(rating); err != nil {
		return list, book.UserBook{}, err
	}
	b = book.Normalize(b)
	if book.HasTitle(list, b.Title) {
		return list, book.UserBook{}, fmt.Errorf("%w: %q", ErrAlreadyListed, b.Title)
	}
	b.Score = 0

	id := now.UnixMilli()
	for taken(list, strconv.FormatInt(id, 10)) {
		id++
	}
	ub := book.UserBook{
		Book:       b,
		UserBookID: strconv.FormatInt(id, 10),
		Rating:     rating,
	}

	out := make([]book.UserBook, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, ub)
	return out, ub, nil
}

// Remove returns a new list without the entry userBookID.
func Remove(list []book.UserBook, userBookID string) ([]book.UserBook, error) {
	out := make([]book.UserBook, 0, len(list))
	found := false
	for _, ub := range list {
		if ub.UserBookID == userBookID {
			found = true
			continue
		}
		out = append(out, ub)
	}
	if !found {
		return list, fmt.Errorf("%w: %s", ErrEntryNotFound, userBookID)
	}
	return out, nil
}

// Sanitize normalises entries read back from storage, dropping records
// without a title or with a rating outside 1-5.
func Sanitize(list []book.UserBook) []book.UserBook {
	out := make([]book.UserBook, 0, len(list))
	for _, ub := range list {
		ub.Book = book.Normalize(ub.Book)
		if ub.Title == "" || ValidateRating(ub.Rating) != nil {
			continue
		}
		out = append(out, ub)
	}
	return out
}

func taken(list []book.UserBook, id string) bool {
	for _, ub := range list {
		if ub.UserBookID == id {
			return true
		}
	}
	return false
}
