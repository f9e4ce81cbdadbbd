package feedback

import (
	"errors"
	"fmt"
	"strings"
)

// Signal is a binary like/dislike judgement on a book.
type Signal string

const (
	Like    Signal = "like"
	Dislike Signal = "dislike"
)

// ErrInvalidSignal is returned when a signal is neither like nor dislike.
var ErrInvalidSignal = errors.New("invalid feedback signal")

// ParseSignal validates a signal string, case-insensitively.
func ParseSignal(s string) (Signal, error) {
	switch Signal(strings.ToLower(strings.TrimSpace(s))) {
	case Like:
		return Like, nil
	case Dislike:
		return Dislike, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSignal, s)
	}
}

// Map holds at most one signal per book id; the last write wins.
type Map map[string]Signal

// Set records a signal for bookID, replacing any previous one.
func (m Map) Set(bookID string, s Signal) {
	m[bookID] = s
}

// Get returns the signal for bookID, if any.
func (m Map) Get(bookID string) (Signal, bool) {
	s, ok := m[bookID]
	return s, ok
}

// Clone returns an independent copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
