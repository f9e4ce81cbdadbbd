// Package recommend ranks catalog books for a reader from their rated
// reading list, their like/dislike feedback and a genre preference order.
package recommend

import (
	"context"
	"sort"
	"strings"

	"bookwidget/internal/book"
	"bookwidget/internal/catalog"
	"bookwidget/internal/feedback"
	"bookwidget/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Scoring constants. These are part of the observable behaviour and are
// kept fixed.
const (
	MaxResults        = 5
	FavoriteMinRating = 4
	TopGenreBonus     = 5
	MinGenreBonus     = 1
	LikeBonus         = 3
	DislikePenalty    = 5
)

// Result is one ranked recommendation cycle.
type Result struct {
	Books []book.Book `json:"books"`
	// UserBooksEmpty is set when there was nothing to base
	// recommendations on, as opposed to no candidate qualifying.
	UserBooksEmpty bool `json:"user_books_empty"`
}

// SubjectSearcher looks up books by subject for catalog augmentation.
type SubjectSearcher interface {
	SubjectSearch(ctx context.Context, subject string) ([]book.Book, error)
}

// Scorer computes recommendations, augmenting the catalog with books from
// the reader's top genre before ranking.
type Scorer struct {
	searcher SubjectSearcher
}

// NewScorer creates a scorer. A nil searcher disables augmentation.
func NewScorer(searcher SubjectSearcher) *Scorer {
	return &Scorer{searcher: searcher}
}

// Recommend augments cat from the top genre and ranks it. Augmentation
// failures are logged and ignored.
func (s *Scorer) Recommend(ctx context.Context, userBooks []book.UserBook, cat *catalog.Catalog, fb feedback.Map) Result {
	if len(userBooks) == 0 {
		return emptyResult(true)
	}
	if discovered := s.Augment(ctx, userBooks); len(discovered) > 0 {
		cat.Add(discovered...)
	}
	metrics.RecommendationRuns.Inc()
	return Rank(userBooks, cat.Books(), fb)
}

// Augment returns books found for the reader's top genre. It returns nil
// when there is no usable top genre or the lookup fails.
func (s *Scorer) Augment(ctx context.Context, userBooks []book.UserBook) []book.Book {
	if s.searcher == nil {
		return nil
	}
	genres := GenreOrder(userBooks)
	if len(genres) == 0 || genres[0] == book.UnknownGenre {
		return nil
	}
	top := genres[0]

	found, err := s.searcher.SubjectSearch(ctx, top)
	if err != nil {
		metrics.AugmentationFailures.Inc()
		log.Warn().Err(err).Str("genre", top).Msg("genre augmentation failed")
		return nil
	}
	return found
}

// Rank scores every catalog book the reader has not read and returns the
// best MaxResults with a positive score, highest first. Equal scores keep
// catalog order.
func Rank(userBooks []book.UserBook, books []book.Book, fb feedback.Map) Result {
	if len(userBooks) == 0 {
		return emptyResult(true)
	}

	features := FeatureCounts(userBooks)
	genreRank := make(map[string]int)
	for i, g := range GenreOrder(userBooks) {
		genreRank[g] = i
	}
	read := make(map[string]bool, len(userBooks))
	for _, ub := range userBooks {
		read[book.TitleKey(ub.Title)] = true
	}

	out := emptyResult(false)
	for _, b := range books {
		if read[book.TitleKey(b.Title)] {
			continue
		}
		score := Score(b, features, genreRank, fb)
		if score <= 0 {
			continue
		}
		c := book.Clone(b)
		c.Score = score
		out.Books = append(out.Books, c)
	}

	sort.SliceStable(out.Books, func(i, j int) bool {
		return out.Books[i].Score > out.Books[j].Score
	})
	if len(out.Books) > MaxResults {
		out.Books = out.Books[:MaxResults]
	}
	return out
}

// Score computes the raw score of one candidate. genreRank maps a genre to
// its 0-based position in the reader's preference order.
func Score(b book.Book, features map[string]int, genreRank map[string]int, fb feedback.Map) int {
	score := 0
	for _, f := range b.Features {
		score += features[f]
	}
	if i, ok := genreRank[genreOf(b)]; ok {
		score += max(TopGenreBonus-i, MinGenreBonus)
	}
	switch fb[b.ID] {
	case feedback.Like:
		score += LikeBonus
	case feedback.Dislike:
		score -= DislikePenalty
	}
	return score
}

// FeatureCounts counts feature tags across favorite books (rated at least
// FavoriteMinRating). The map is empty when there are no favorites.
func FeatureCounts(userBooks []book.UserBook) map[string]int {
	counts := make(map[string]int)
	for _, ub := range userBooks {
		if ub.Rating < FavoriteMinRating {
			continue
		}
		for _, f := range ub.Features {
			counts[f]++
		}
	}
	return counts
}

// GenreOrder returns the genres of all read books by descending frequency.
// Ties keep first-seen order.
func GenreOrder(userBooks []book.UserBook) []string {
	counts := make(map[string]int)
	var order []string
	for _, ub := range userBooks {
		g := genreOf(ub.Book)
		if _, ok := counts[g]; !ok {
			order = append(order, g)
		}
		counts[g]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

func genreOf(b book.Book) string {
	if g := strings.TrimSpace(b.Genre); g != "" {
		return g
	}
	return book.UnknownGenre
}

func emptyResult(userBooksEmpty bool) Result {
	return Result{Books: []book.Book{}, UserBooksEmpty: userBooksEmpty}
}
