package feedback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	s, err := ParseSignal(" LIKE ")
	require.NoError(t, err)
	assert.Equal(t, Like, s)

	s, err = ParseSignal("dislike")
	require.NoError(t, err)
	assert.Equal(t, Dislike, s)

	_, err = ParseSignal("meh")
	assert.True(t, errors.Is(err, ErrInvalidSignal))
}

func TestMap_LastWriteWins(t *testing.T) {
	m := Map{}
	m.Set("b1", Like)
	m.Set("b1", Dislike)

	s, ok := m.Get("b1")
	require.True(t, ok)
	assert.Equal(t, Dislike, s)
	assert.Len(t, m, 1)

	_, ok = m.Get("b2")
	assert.False(t, ok)
}

func TestMap_Clone(t *testing.T) {
	m := Map{"b1": Like}
	c := m.Clone()
	c.Set("b1", Dislike)

	s, _ := m.Get("b1")
	assert.Equal(t, Like, s)
}
