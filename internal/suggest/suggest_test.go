package suggest

import (
	"context"
	"fmt"
	"testing"

	"bookwidget/internal/book"
	"bookwidget/internal/catalog"
	"bookwidget/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, field search.Field) []book.Book {
	args := m.Called(ctx, query, field)
	return args.Get(0).([]book.Book)
}

func bookTitles(books []book.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestMatcher_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("short query skips search", func(t *testing.T) {
		m := new(mockSearcher)
		matcher := NewMatcher(m)

		got := matcher.Suggest(ctx, catalog.NewSeeded(), " du ", search.FieldTitle)

		assert.NotNil(t, got)
		assert.Empty(t, got)
		m.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("local first and deduplicated", func(t *testing.T) {
		m := new(mockSearcher)
		m.On("Search", ctx, "dune", search.FieldTitle).Return([]book.Book{
			{ID: "r1", Title: "DUNE"},
			{ID: "r2", Title: "Dune Messiah"},
		})
		matcher := NewMatcher(m)

		got := matcher.Suggest(ctx, catalog.NewSeeded(), "dune", search.FieldTitle)

		assert.Equal(t, []string{"Dune", "Dune Messiah"}, bookTitles(got))
		assert.Equal(t, "seed-4", got[0].ID)
	})

	t.Run("caps remote results", func(t *testing.T) {
		var remote []book.Book
		for i := range 8 {
			remote = append(remote, book.Book{ID: fmt.Sprint(i), Title: fmt.Sprintf("Remote %d", i)})
		}
		m := new(mockSearcher)
		m.On("Search", ctx, "zzz", search.FieldAuthor).Return(remote)
		matcher := NewMatcher(m)

		got := matcher.Suggest(ctx, catalog.NewSeeded(), "zzz", search.FieldAuthor)

		assert.Len(t, got, MaxRemote)
	})

	t.Run("matches authors locally", func(t *testing.T) {
		m := new(mockSearcher)
		m.On("Search", ctx, "austen", search.FieldAuthor).Return([]book.Book{})
		matcher := NewMatcher(m)

		got := matcher.Suggest(ctx, catalog.NewSeeded(), "austen", search.FieldAuthor)

		assert.Equal(t, []string{"Pride and Prejudice"}, bookTitles(got))
	})
}

func TestMerge(t *testing.T) {
	local := []book.Book{{Title: "A"}, {Title: "B"}}
	remote := []book.Book{{Title: "b"}, {Title: "C"}, {Title: "C"}}

	assert.Equal(t, []string{"A", "B", "C"}, bookTitles(Merge(local, remote)))
}

func TestLocal_ShortQuery(t *testing.T) {
	assert.Nil(t, Local(catalog.NewSeeded(), "ab"))
	assert.NotNil(t, Local(catalog.NewSeeded(), "qqq"))
}

func TestMatcher_Remote(t *testing.T) {
	ctx := context.Background()
	m := new(mockSearcher)
	m.On("Search", ctx, "le guin", search.FieldAuthor).Return([]book.Book{{Title: "The Dispossessed"}})
	matcher := NewMatcher(m)

	assert.Equal(t, []string{"The Dispossessed"}, bookTitles(matcher.Remote(ctx, "  le guin ", search.FieldAuthor)))
	assert.Nil(t, matcher.Remote(ctx, "le", search.FieldAuthor))
	assert.Nil(t, NewMatcher(nil).Remote(ctx, "le guin", search.FieldAuthor))
	m.AssertNumberOfCalls(t, "Search", 1)
}
