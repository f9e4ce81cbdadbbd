package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSearch = `{
	"numFound": 1,
	"docs": [{
		"key": "/works/OL1W",
		"title": "The Hobbit",
		"author_name": ["J.R.R. Tolkien"],
		"subject": ["Fantasy", "Dragons"],
		"cover_i": 42,
		"first_sentence": ["In a hole in the ground there lived a hobbit."]
	}]
}`

func TestClient_Search(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		gotQuery = r.URL.Query().Get("title")
		gotAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSearch))
	}))
	defer srv.Close()

	c := NewClient("bookwidget-test", 100, 0, WithBaseURL(srv.URL))
	res, err := c.Search(context.Background(), "title", "the hobbit", 5)

	require.NoError(t, err)
	assert.Equal(t, "the hobbit", gotQuery)
	assert.Equal(t, "bookwidget-test", gotAgent)
	require.Len(t, res.Docs, 1)
	doc := res.Docs[0]
	assert.Equal(t, "/works/OL1W", doc.Key)
	assert.Equal(t, []string{"J.R.R. Tolkien"}, doc.AuthorNames)
	assert.Equal(t, 42, doc.CoverID)
}

func TestClient_Search_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("test", 100, 3, WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "title", "x", 5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Search_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleSearch))
	}))
	defer srv.Close()

	c := NewClient("test", 100, 1, WithBaseURL(srv.URL))
	res, err := c.Search(context.Background(), "subject", "fantasy", 5)

	require.NoError(t, err)
	assert.Len(t, res.Docs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Search_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleSearch))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("test", 100, 2, WithBaseURL(srv.URL))
	_, err := c.Search(ctx, "title", "x", 5)

	assert.Error(t, err)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test", 1000, 0, WithBaseURL(srv.URL))
	for range 7 {
		_, _ = c.Search(context.Background(), "title", "x", 5)
	}

	assert.Equal(t, int32(5), calls.Load())
}

func TestClient_CanceledCallsDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleSearch))
	}))
	defer srv.Close()

	c := NewClient("test", 1000, 0, WithBaseURL(srv.URL))
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	for range 7 {
		_, err := c.Search(canceled, "title", "x", 5)
		require.Error(t, err)
	}

	res, err := c.Search(context.Background(), "title", "x", 5)

	require.NoError(t, err)
	assert.Len(t, res.Docs, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CoverURL(t *testing.T) {
	c := NewClient("test", 1, 0)

	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-M.jpg", c.CoverURL(42))
	assert.Empty(t, c.CoverURL(0))
}
