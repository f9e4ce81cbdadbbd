package readinglist

import (
	"context"
	"errors"
	"fmt"

	"bookwidget/internal/book"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// LocalKeyPrefix is the fixed name local copies are stored under.
const LocalKeyPrefix = "bookWidgetUserBooks:"

// BadgerRepo is the local cache the service falls back to when the remote
// store is unavailable.
type BadgerRepo struct {
	db *badger.DB
}

func NewBadgerRepo(db *badger.DB) *BadgerRepo {
	return &BadgerRepo{db: db}
}

// OpenBadger opens the local cache at dir. ":memory:" opens an in-memory
// store.
func OpenBadger(dir string) (*badger.DB, error) {
	var opts badger.Options
	if dir == ":memory:" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	return db, nil
}

func localKey(sessionID string) []byte {
	return []byte(LocalKeyPrefix + sessionID)
}

func (r *BadgerRepo) Load(ctx context.Context, sessionID string) ([]book.UserBook, error) {
	var books []book.UserBook
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(localKey(sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get local reading list: %w", err)
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &books); err != nil {
				return fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return Sanitize(books), nil
}

func (r *BadgerRepo) Save(ctx context.Context, sessionID string, books []book.UserBook) error {
	if books == nil {
		books = []book.UserBook{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal reading list: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(localKey(sessionID), data); err != nil {
			return fmt.Errorf("set local reading list: %w", err)
		}
		return nil
	})
}

