package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		b := Normalize(Book{ID: " 1 ", Title: "  Dune "})

		assert.Equal(t, "1", b.ID)
		assert.Equal(t, "Dune", b.Title)
		assert.Equal(t, UnknownGenre, b.Genre)
		assert.NotNil(t, b.Features)
		assert.Empty(t, b.Features)
	})

	t.Run("drops blank and duplicate features", func(t *testing.T) {
		b := Normalize(Book{Title: "x", Features: []string{"magic", " ", "quest", "magic"}})

		assert.Equal(t, []string{"magic", "quest"}, b.Features)
	})

	t.Run("keeps genre", func(t *testing.T) {
		b := Normalize(Book{Title: "x", Genre: "Fantasy"})

		assert.Equal(t, "Fantasy", b.Genre)
	})
}

func TestHasTitle(t *testing.T) {
	list := []UserBook{{Book: Book{Title: "The Hobbit"}}}

	assert.True(t, HasTitle(list, "the hobbit"))
	assert.True(t, HasTitle(list, " THE HOBBIT "))
	assert.False(t, HasTitle(list, "The Silmarillion"))
	assert.False(t, HasTitle(nil, "The Hobbit"))
}

func TestClone(t *testing.T) {
	orig := Book{Title: "x", Features: []string{"a"}}
	c := Clone(orig)
	c.Features[0] = "b"

	assert.Equal(t, "a", orig.Features[0])
}
