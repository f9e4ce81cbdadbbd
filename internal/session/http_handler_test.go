package session

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookwidget/internal/httpx"
	"bookwidget/internal/platform/crypto"
	"bookwidget/internal/readinglist"

	"github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   struct {
		Code    string              `json:"code"`
		Details []httpx.ErrorDetail `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func authed(method, target string, body []byte, sessionID string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	return r.WithContext(httpx.ContextWithSession(r.Context(), sessionID))
}

func newTestHandler(t *testing.T) (*HTTPHandler, *readinglist.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := readinglist.NewMockRepository(ctrl)
	m := newTestManager(repo, nil, nil)
	return NewHTTPHandler(m, testSecret, time.Hour), repo
}

func TestHTTPHandler_CreateSession(t *testing.T) {
	t.Run("empty body issues token", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, readinglist.ErrNotFound)
		w := httptest.NewRecorder()

		h.CreateSession(w, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp createSessionResp
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
		claims, err := crypto.ParseSessionToken(testSecret, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.SessionID, claims.Sid)
		assert.Empty(t, resp.Notice)
	})

	t.Run("corrupt list notice", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, readinglist.ErrCorrupt)
		w := httptest.NewRecorder()

		h.CreateSession(w, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))

		var resp createSessionResp
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
		assert.Equal(t, CorruptNotice, resp.Notice)
	})

	t.Run("invalid resume id", func(t *testing.T) {
		h, _ := newTestHandler(t)
		w := httptest.NewRecorder()

		h.CreateSession(w, httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{"session_id":"abc"}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		h, _ := newTestHandler(t)
		w := httptest.NewRecorder()

		h.CreateSession(w, httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", decode(t, w).Error.Code)
	})
}

func TestHTTPHandler_BookLifecycle(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.EXPECT().Load(gomock.Any(), "s1").Return(nil, readinglist.ErrNotFound)
	repo.EXPECT().Save(gomock.Any(), "s1", gomock.Any()).Return(nil).Times(2)

	w := httptest.NewRecorder()
	h.AddBook(w, authed(http.MethodPost, "/v1/me/books", []byte(`{"title":"The Hobbit","rating":5}`), "s1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added addBookResp
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &added))
	assert.Equal(t, "The Hobbit", added.UserBook.Title)
	assert.Len(t, added.Recommendations.Books, 2)

	w = httptest.NewRecorder()
	h.AddBook(w, authed(http.MethodPost, "/v1/me/books", []byte(`{"title":"the hobbit","rating":4}`), "s1"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	h.ListBooks(w, authed(http.MethodGet, "/v1/me/books", nil, "s1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w).Meta["total"])

	w = httptest.NewRecorder()
	req := authed(http.MethodPut, "/v1/me/feedback/seed-2", []byte(`{"signal":"DISLIKE"}`), "s1")
	req.SetPathValue("bookID", "seed-2")
	h.SetFeedback(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = authed(http.MethodDelete, "/v1/me/books/"+added.UserBook.UserBookID, nil, "s1")
	req.SetPathValue("id", added.UserBook.UserBookID)
	h.RemoveBook(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"user_books_empty":true`)

	w = httptest.NewRecorder()
	req = authed(http.MethodDelete, "/v1/me/books/nope", nil, "s1")
	req.SetPathValue("id", "nope")
	h.RemoveBook(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPHandler_AddBookValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	cases := map[string]string{
		"missing title": `{"rating":3}`,
		"rating low":    `{"title":"Dune","rating":0}`,
		"rating high":   `{"title":"Dune","rating":6}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.AddBook(w, authed(http.MethodPost, "/v1/me/books", []byte(body), "s1"))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
		})
	}
}

func TestHTTPHandler_SetFeedbackErrors(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.EXPECT().Load(gomock.Any(), "s1").Return(nil, readinglist.ErrNotFound)

	w := httptest.NewRecorder()
	req := authed(http.MethodPut, "/v1/me/feedback/seed-1", []byte(`{"signal":"meh"}`), "s1")
	req.SetPathValue("bookID", "seed-1")
	h.SetFeedback(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = authed(http.MethodPut, "/v1/me/feedback/ghost", []byte(`{"signal":"like"}`), "s1")
	req.SetPathValue("bookID", "ghost")
	h.SetFeedback(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPHandler_SuggestionsAndCatalog(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.EXPECT().Load(gomock.Any(), "s1").Return(nil, readinglist.ErrNotFound)

	w := httptest.NewRecorder()
	h.Suggestions(w, authed(http.MethodGet, "/v1/me/suggestions?q=guin&field=author", nil, "s1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), "A Wizard of Earthsea")

	w = httptest.NewRecorder()
	h.Suggestions(w, authed(http.MethodGet, "/v1/me/suggestions?q=guin&field=subject", nil, "s1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Catalog(w, authed(http.MethodGet, "/v1/me/catalog", nil, "s1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, decode(t, w).Meta["total"])
}

func TestHTTPHandler_NoticeOnLazyLoad(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.EXPECT().Load(gomock.Any(), "s1").Return(nil, readinglist.ErrCorrupt)

	w := httptest.NewRecorder()
	h.Recommendations(w, authed(http.MethodGet, "/v1/me/recommendations", nil, "s1"))
	assert.Equal(t, CorruptNotice, decode(t, w).Meta["notice"])

	w = httptest.NewRecorder()
	h.Recommendations(w, authed(http.MethodGet, "/v1/me/recommendations", nil, "s1"))
	assert.Nil(t, decode(t, w).Meta["notice"])
}

func TestHTTPHandler_LoadFailureIsUnavailable(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.EXPECT().Load(gomock.Any(), "s1").Return(nil, errors.New("disk error"))

	w := httptest.NewRecorder()
	h.ListBooks(w, authed(http.MethodGet, "/v1/me/books", nil, "s1"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decode(t, w).Error.Code)
}
