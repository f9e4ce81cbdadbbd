package readinglist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookwidget/internal/book"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo stores each session's list as one JSONB document.
type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Load(ctx context.Context, sessionID string) ([]book.UserBook, error) {
	const loadSQL = `SELECT books FROM session_books WHERE session_id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var raw []byte
	if err := r.db.QueryRow(timeoutCtx, loadSQL, sessionID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load reading list: %w", err)
	}

	var books []book.UserBook
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return Sanitize(books), nil
}

func (r *PostgresRepo) Save(ctx context.Context, sessionID string, books []book.UserBook) error {
	const upsertSQL = `
		INSERT INTO session_books (session_id, books, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET books = EXCLUDED.books, updated_at = NOW()
	`
	if books == nil {
		books = []book.UserBook{}
	}
	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal reading list: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, upsertSQL, sessionID, raw); err != nil {
		return fmt.Errorf("save reading list: %w", err)
	}
	return nil
}
