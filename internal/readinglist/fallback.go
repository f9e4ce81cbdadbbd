package readinglist

import (
	"context"
	"errors"
	"fmt"

	"bookwidget/internal/book"
	"bookwidget/internal/metrics"

	"github.com/rs/zerolog/log"
)

// FallbackRepository reads from the remote store and falls back to the
// local cache when the remote has nothing or fails. Writes always go to
// the local cache and best-effort to the remote.
type FallbackRepository struct {
	remote Repository
	local  Repository
}

// NewFallbackRepository combines both stores. remote may be nil, in which
// case only the local cache is used.
func NewFallbackRepository(remote, local Repository) *FallbackRepository {
	return &FallbackRepository{remote: remote, local: local}
}

func (r *FallbackRepository) Load(ctx context.Context, sessionID string) ([]book.UserBook, error) {
	if r.remote != nil {
		books, err := r.remote.Load(ctx, sessionID)
		if err == nil {
			return books, nil
		}
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("remote reading list load failed, using local cache")
		}
	}

	books, err := r.local.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	metrics.PersistenceFallbacks.WithLabelValues("load").Inc()
	return books, nil
}

func (r *FallbackRepository) Save(ctx context.Context, sessionID string, books []book.UserBook) error {
	localErr := r.local.Save(ctx, sessionID, books)
	if localErr != nil {
		log.Warn().Err(localErr).Str("session_id", sessionID).Msg("local reading list save failed")
	}
	if r.remote == nil {
		return localErr
	}

	remoteErr := r.remote.Save(ctx, sessionID, books)
	if remoteErr == nil {
		return nil
	}
	log.Warn().Err(remoteErr).Str("session_id", sessionID).Msg("remote reading list save failed")
	if localErr != nil {
		return fmt.Errorf("save reading list: %w", errors.Join(remoteErr, localErr))
	}
	metrics.PersistenceFallbacks.WithLabelValues("save").Inc()
	return nil
}
