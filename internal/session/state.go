package session

import (
	"sync"
	"time"

	"bookwidget/internal/book"
	"bookwidget/internal/catalog"
	"bookwidget/internal/feedback"
	"bookwidget/internal/recommend"
)

// State is everything one widget session owns. All fields are guarded by
// mu; saveMu serialises persistence so the newest list is written last.
type State struct {
	mu        sync.Mutex
	id        string
	userBooks []book.UserBook
	catalog   *catalog.Catalog
	feedback  feedback.Map
	last      recommend.Result
	notice    string
	lastSeen  time.Time

	version uint64

	saveMu       sync.Mutex
	savedVersion uint64
}

func newState(id string, userBooks []book.UserBook, now time.Time) *State {
	cat := catalog.NewSeeded()
	for _, ub := range userBooks {
		cat.Add(ub.Book)
	}
	return &State{
		id:        id,
		userBooks: userBooks,
		catalog:   cat,
		feedback:  make(feedback.Map),
		last:      recommend.Result{Books: []book.Book{}, UserBooksEmpty: len(userBooks) == 0},
		lastSeen:  now,
	}
}

func (s *State) ID() string {
	return s.id
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// snapshot copies the reading list. Caller holds mu.
func (s *State) snapshotLocked() []book.UserBook {
	out := make([]book.UserBook, len(s.userBooks))
	copy(out, s.userBooks)
	return out
}

func (s *State) takeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = ""
	return n
}
