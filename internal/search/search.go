// Package search is the book lookup collaborator used by suggestions and
// recommendation augmentation. It maps Open Library hits onto catalog
// books and caches them per field and query.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookwidget/internal/book"
	"bookwidget/internal/metrics"
	"bookwidget/internal/platform/openlibrary"

	"github.com/rs/zerolog/log"
)

// Field selects what a query is matched against.
type Field string

const (
	FieldTitle   Field = "title"
	FieldAuthor  Field = "author"
	FieldSubject Field = "subject"
)

// ParseField accepts "title" and "author"; anything else is an error.
// Subject searches are internal and not accepted from callers.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTitle, "":
		return FieldTitle, nil
	case FieldAuthor:
		return FieldAuthor, nil
	default:
		return "", fmt.Errorf("invalid search field: %q", s)
	}
}

const maxFeatures = 8

// OpenLibraryClient is the subset of the Open Library client used here.
type OpenLibraryClient interface {
	Search(ctx context.Context, field, query string, limit int) (*openlibrary.SearchResponse, error)
	CoverURL(coverID int) string
}

type Config struct {
	Limit        int
	SubjectLimit int
	CacheTTL     time.Duration
}

type Service struct {
	client OpenLibraryClient
	cache  *resultCache
	cfg    Config
}

func NewService(client OpenLibraryClient, cfg Config) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.SubjectLimit <= 0 {
		cfg.SubjectLimit = 10
	}
	return &Service{
		client: client,
		cache:  newResultCache(cfg.CacheTTL, 0),
		cfg:    cfg,
	}
}

// Search is the best-effort lookup: failures are logged and reported as
// no results.
func (s *Service) Search(ctx context.Context, query string, field Field) []book.Book {
	books, err := s.Lookup(ctx, query, field)
	if err != nil {
		log.Warn().Err(err).Str("field", string(field)).Str("query", query).Msg("book search failed")
		return []book.Book{}
	}
	return books
}

// SubjectSearch looks up books filed under subject. Every hit is given the
// subject as its genre.
func (s *Service) SubjectSearch(ctx context.Context, subject string) ([]book.Book, error) {
	return s.Lookup(ctx, subject, FieldSubject)
}

// Lookup queries Open Library, serving repeated queries from the cache.
// Errors are returned and never cached.
func (s *Service) Lookup(ctx context.Context, query string, field Field) ([]book.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []book.Book{}, nil
	}
	key := string(field) + ":" + strings.ToLower(query)
	if books, ok := s.cache.get(key); ok {
		metrics.SearchRequests.WithLabelValues(string(field), "cache_hit").Inc()
		return books, nil
	}

	limit := s.cfg.Limit
	if field == FieldSubject {
		limit = s.cfg.SubjectLimit
	}
	res, err := s.client.Search(ctx, string(field), query, limit)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(string(field), "error").Inc()
		return nil, fmt.Errorf("search %s %q: %w", field, query, err)
	}
	metrics.SearchRequests.WithLabelValues(string(field), "ok").Inc()

	books := make([]book.Book, 0, len(res.Docs))
	for _, doc := range res.Docs {
		b := s.toBook(doc)
		if field == FieldSubject {
			b.Genre = query
		}
		b = book.Normalize(b)
		if b.Title == "" {
			continue
		}
		books = append(books, b)
	}
	s.cache.set(key, books)
	return books, nil
}

func (s *Service) toBook(doc openlibrary.Doc) book.Book {
	b := book.Book{
		ID:       strings.TrimPrefix(doc.Key, "/works/"),
		Title:    doc.Title,
		CoverURL: s.client.CoverURL(doc.CoverID),
	}
	if len(doc.AuthorNames) > 0 {
		b.Author = doc.AuthorNames[0]
	}
	if len(doc.Subjects) > 0 {
		b.Genre = doc.Subjects[0]
	}
	for i, subj := range doc.Subjects {
		if i == maxFeatures {
			break
		}
		b.Features = append(b.Features, strings.ToLower(subj))
	}
	if len(doc.FirstSentence) > 0 {
		b.Description = doc.FirstSentence[0]
	}
	if b.ID == "" {
		b.ID = "ol-" + book.TitleKey(doc.Title)
	}
	return b
}
