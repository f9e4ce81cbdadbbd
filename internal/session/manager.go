// Package session owns per-session widget state and serves it over HTTP.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookwidget/internal/book"
	"bookwidget/internal/feedback"
	"bookwidget/internal/metrics"
	"bookwidget/internal/readinglist"
	"bookwidget/internal/recommend"
	"bookwidget/internal/search"
	"bookwidget/internal/suggest"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Config struct {
	IdleTTL time.Duration
}

// Manager holds live sessions in memory, loading reading lists from the
// repository on first access.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State

	repo     readinglist.Repository
	scorer   *recommend.Scorer
	matcher  *suggest.Matcher
	searcher BookSearcher
	idleTTL  time.Duration
	now      func() time.Time
}

func NewManager(repo readinglist.Repository, scorer *recommend.Scorer, matcher *suggest.Matcher, searcher BookSearcher, cfg Config) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*State),
		repo:     repo,
		scorer:   scorer,
		matcher:  matcher,
		searcher: searcher,
		idleTTL:  cfg.IdleTTL,
		now:      time.Now,
	}
}

// Open starts a session, resuming resumeID when it is a valid id. It
// returns the session id and any one-time notice.
func (m *Manager) Open(ctx context.Context, resumeID string) (string, string, error) {
	id := strings.TrimSpace(resumeID)
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	st, err := m.state(ctx, id)
	if err != nil {
		return "", "", err
	}
	return id, st.takeNotice(), nil
}

// TakeNotice returns and clears a pending notice for a live session.
func (m *Manager) TakeNotice(sessionID string) string {
	m.mu.Lock()
	st, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return ""
	}
	return st.takeNotice()
}

func (m *Manager) state(ctx context.Context, id string) (*State, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	now := m.now()

	m.mu.Lock()
	if st, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		st.touch(now)
		return st, nil
	}
	m.mu.Unlock()

	books, notice, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.sessions[id]; ok {
		st.touch(now)
		return st, nil
	}
	st := newState(id, books, now)
	st.notice = notice
	m.sessions[id] = st
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return st, nil
}

// load reads the stored list. Failures other than absence or corruption
// are returned so the session is not cached with an empty list that a
// later save would write over the stored one.
func (m *Manager) load(ctx context.Context, id string) ([]book.UserBook, string, error) {
	books, err := m.repo.Load(ctx, id)
	switch {
	case err == nil:
		return books, "", nil
	case errors.Is(err, readinglist.ErrNotFound):
		return []book.UserBook{}, "", nil
	case errors.Is(err, readinglist.ErrCorrupt):
		log.Warn().Err(err).Str("session_id", id).Msg("stored reading list is corrupt, starting empty")
		return []book.UserBook{}, CorruptNotice, nil
	default:
		log.Error().Err(err).Str("session_id", id).Msg("load reading list")
		return nil, "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

func (m *Manager) Books(ctx context.Context, sessionID string) ([]book.UserBook, error) {
	st, err := m.state(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshotLocked(), nil
}

func (m *Manager) Catalog(ctx context.Context, sessionID string) ([]book.Book, error) {
	st, err := m.state(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.catalog.Books(), nil
}

// AddBook puts a book on the reading list and returns the new entry with
// the recomputed recommendations.
func (m *Manager) AddBook(ctx context.Context, sessionID string, in AddInput) (book.UserBook, recommend.Result, error) {
	if err := readinglist.ValidateRating(in.Rating); err != nil {
		return book.UserBook{}, recommend.Result{}, err
	}
	st, err := m.state(ctx, sessionID)
	if err != nil {
		return book.UserBook{}, recommend.Result{}, err
	}

	b, err := m.resolve(ctx, st, in)
	if err != nil {
		return book.UserBook{}, recommend.Result{}, err
	}

	st.mu.Lock()
	list, ub, err := readinglist.Add(st.userBooks, b, in.Rating, m.now())
	if err != nil {
		st.mu.Unlock()
		return book.UserBook{}, recommend.Result{}, err
	}
	st.userBooks = list
	st.catalog.Add(ub.Book)
	st.version++
	st.mu.Unlock()

	m.persist(ctx, st)
	return ub, m.recompute(ctx, st), nil
}

// resolve finds the record to add without holding the state lock across
// the remote lookup.
func (m *Manager) resolve(ctx context.Context, st *State, in AddInput) (book.Book, error) {
	title := strings.TrimSpace(in.Title)

	st.mu.Lock()
	if in.BookID != "" {
		b, ok := st.catalog.ByID(in.BookID)
		st.mu.Unlock()
		if !ok {
			return book.Book{}, fmt.Errorf("%w: %s", ErrBookNotFound, in.BookID)
		}
		return b, nil
	}
	if b, ok := st.catalog.ByTitle(title); ok {
		st.mu.Unlock()
		return b, nil
	}
	st.mu.Unlock()

	if m.searcher != nil && title != "" {
		for _, hit := range m.searcher.Search(ctx, title, search.FieldTitle) {
			if book.TitleKey(hit.Title) == book.TitleKey(title) {
				return hit, nil
			}
		}
	}
	return book.Normalize(book.Book{
		ID:     "user-" + uuid.NewString(),
		Title:  title,
		Author: strings.TrimSpace(in.Author),
	}), nil
}

func (m *Manager) RemoveBook(ctx context.Context, sessionID, userBookID string) (recommend.Result, error) {
	st, err := m.state(ctx, sessionID)
	if err != nil {
		return recommend.Result{}, err
	}

	st.mu.Lock()
	list, err := readinglist.Remove(st.userBooks, userBookID)
	if err != nil {
		st.mu.Unlock()
		return recommend.Result{}, err
	}
	st.userBooks = list
	st.version++
	st.mu.Unlock()

	m.persist(ctx, st)
	return m.recompute(ctx, st), nil
}

// SetFeedback records a like or dislike for a catalog book. The last
// signal for a book wins.
func (m *Manager) SetFeedback(ctx context.Context, sessionID, bookID string, signal feedback.Signal) (recommend.Result, error) {
	st, err := m.state(ctx, sessionID)
	if err != nil {
		return recommend.Result{}, err
	}

	st.mu.Lock()
	if _, ok := st.catalog.ByID(bookID); !ok {
		st.mu.Unlock()
		return recommend.Result{}, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	st.feedback.Set(bookID, signal)
	metrics.RecommendationRuns.Inc()
	result := recommend.Rank(st.userBooks, st.catalog.Books(), st.feedback)
	st.last = result
	st.mu.Unlock()

	return result, nil
}

// Recommendations recomputes the top picks, augmenting the catalog from
// the reader's top genre.
func (m *Manager) Recommendations(ctx context.Context, sessionID string) (recommend.Result, error) {
	st, err := m.state(ctx, sessionID)
	if err != nil {
		return recommend.Result{}, err
	}
	return m.recompute(ctx, st), nil
}

// Suggest returns typeahead matches. New remote titles join the catalog.
func (m *Manager) Suggest(ctx context.Context, sessionID, query string, field search.Field) ([]book.Book, error) {
	st, err := m.state(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	local := suggest.Local(st.catalog, query)
	st.mu.Unlock()
	if local == nil {
		return []book.Book{}, nil
	}

	remote := m.matcher.Remote(ctx, query, field)
	merged := suggest.Merge(local, remote)
	if len(remote) > 0 {
		st.mu.Lock()
		st.catalog.Add(merged[len(local):]...)
		st.mu.Unlock()
	}
	return merged, nil
}

func (m *Manager) recompute(ctx context.Context, st *State) recommend.Result {
	st.mu.Lock()
	snapshot := st.snapshotLocked()
	st.mu.Unlock()

	discovered := m.scorer.Augment(ctx, snapshot)

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(discovered) > 0 {
		st.catalog.Add(discovered...)
	}
	metrics.RecommendationRuns.Inc()
	st.last = recommend.Rank(st.userBooks, st.catalog.Books(), st.feedback)
	return st.last
}

func (m *Manager) persist(ctx context.Context, st *State) {
	st.saveMu.Lock()
	defer st.saveMu.Unlock()

	st.mu.Lock()
	snapshot, version := st.snapshotLocked(), st.version
	st.mu.Unlock()
	if version <= st.savedVersion {
		return
	}

	if err := m.repo.Save(ctx, st.id, snapshot); err != nil {
		log.Error().Err(err).Str("session_id", st.id).Msg("persist reading list")
		return
	}
	st.savedVersion = version
}

// Evict drops sessions idle longer than the configured TTL and returns how
// many were removed.
func (m *Manager) Evict() int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, st := range m.sessions {
		if st.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return removed
}

// Run evicts idle sessions periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Evict(); n > 0 {
				log.Info().Int("evicted", n).Msg("evicted idle sessions")
			}
		}
	}
}
