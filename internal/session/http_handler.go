package session

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"bookwidget/internal/book"
	"bookwidget/internal/feedback"
	"bookwidget/internal/httpx"
	"bookwidget/internal/platform/crypto"
	"bookwidget/internal/recommend"
	"bookwidget/internal/search"

	"github.com/rs/zerolog"
)

type HTTPHandler struct {
	manager  *Manager
	secret   string
	tokenTTL time.Duration
}

func NewHTTPHandler(manager *Manager, secret string, tokenTTL time.Duration) *HTTPHandler {
	return &HTTPHandler{manager: manager, secret: secret, tokenTTL: tokenTTL}
}

type createSessionReq struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
}

type createSessionResp struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Notice    string    `json:"notice,omitempty"`
}

type addBookReq struct {
	Title  string `json:"title" validate:"notblank,max=300"`
	Author string `json:"author" validate:"max=300"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
	BookID string `json:"book_id" validate:"max=200"`
}

type addBookResp struct {
	UserBook        book.UserBook    `json:"user_book"`
	Recommendations recommend.Result `json:"recommendations"`
}

type feedbackReq struct {
	Signal string `json:"signal" validate:"required,oneof=like dislike"`
}

type suggestionsQuery struct {
	Q     string `validate:"max=200"`
	Field string `validate:"searchfield"`
}

// CreateSession handles POST /v1/sessions. An optional session_id resumes
// a previous session.
func (h *HTTPHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	id, notice, err := h.manager.Open(r.Context(), req.SessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, expires, err := crypto.GenerateSessionToken(h.secret, id, h.tokenTTL)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign session token")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, createSessionResp{
		Token:     token,
		SessionID: id,
		ExpiresAt: expires.UTC(),
		Notice:    notice,
	})
}

// ListBooks handles GET /v1/me/books.
func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	sessionID := httpx.SessionIDFrom(r)
	books, err := h.manager.Books(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, books, map[string]interface{}{"total": len(books)})
}

// AddBook handles POST /v1/me/books.
func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	ub, result, err := h.manager.AddBook(r.Context(), httpx.SessionIDFrom(r), AddInput{
		BookID: strings.TrimSpace(req.BookID),
		Title:  req.Title,
		Author: req.Author,
		Rating: req.Rating,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, addBookResp{UserBook: ub, Recommendations: result})
}

// RemoveBook handles DELETE /v1/me/books/{id}, where id is the reading
// list entry id.
func (h *HTTPHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	entryID := r.PathValue("id")
	if entryID == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid entry ID", nil)
		return
	}

	result, err := h.manager.RemoveBook(r.Context(), httpx.SessionIDFrom(r), entryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, result, nil)
}

// SetFeedback handles PUT /v1/me/feedback/{bookID}.
func (h *HTTPHandler) SetFeedback(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("bookID")
	if bookID == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid book ID", nil)
		return
	}

	var req feedbackReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Signal = strings.ToLower(strings.TrimSpace(req.Signal))
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}
	signal, err := feedback.ParseSignal(req.Signal)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.manager.SetFeedback(r.Context(), httpx.SessionIDFrom(r), bookID, signal)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, result, nil)
}

// Recommendations handles GET /v1/me/recommendations.
func (h *HTTPHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.Recommendations(r.Context(), httpx.SessionIDFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, result, nil)
}

// Suggestions handles GET /v1/me/suggestions?q=&field=title|author.
func (h *HTTPHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := suggestionsQuery{
		Q:     r.URL.Query().Get("q"),
		Field: r.URL.Query().Get("field"),
	}
	if details := httpx.ValidateStruct(q); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}
	field, err := search.ParseField(q.Field)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	books, err := h.manager.Suggest(r.Context(), httpx.SessionIDFrom(r), q.Q, field)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, books, nil)
}

// Catalog handles GET /v1/me/catalog.
func (h *HTTPHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	books, err := h.manager.Catalog(r.Context(), httpx.SessionIDFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.success(w, r, books, map[string]interface{}{"total": len(books)})
}

// success attaches a pending one-time notice to the response meta.
func (h *HTTPHandler) success(w http.ResponseWriter, r *http.Request, data interface{}, meta map[string]interface{}) {
	if notice := h.manager.TakeNotice(httpx.SessionIDFrom(r)); notice != "" {
		if meta == nil {
			meta = make(map[string]interface{}, 1)
		}
		meta["notice"] = notice
	}
	httpx.JSONSuccess(w, r, data, meta)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBookNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrEntryNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Reading list entry not found", nil)
	case errors.Is(err, ErrAlreadyListed):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Book already on reading list", nil)
	case errors.Is(err, ErrInvalidRating):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Rating must be between 1 and 5",
			[]httpx.ErrorDetail{{Field: "rating", Message: "rating must be between 1 and 5"}})
	case errors.Is(err, feedback.ErrInvalidSignal):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Signal must be like or dislike",
			[]httpx.ErrorDetail{{Field: "signal", Message: "signal must be one of: like dislike"}})
	case errors.Is(err, ErrInvalidID):
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid session ID", nil)
	case errors.Is(err, ErrUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Reading list temporarily unavailable", nil)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("session request failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
