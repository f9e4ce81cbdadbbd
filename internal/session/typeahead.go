package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bookwidget/internal/book"
	"bookwidget/internal/debounce"
	"bookwidget/internal/httpx"
	"bookwidget/internal/search"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TypeaheadInput is one keystroke-level update from the widget.
type TypeaheadInput struct {
	Field string `json:"field"`
	Query string `json:"query"`
}

// TypeaheadMessage is pushed once per settled input.
type TypeaheadMessage struct {
	Type  string      `json:"type"` // suggestions or error
	Field string      `json:"field,omitempty"`
	Query string      `json:"query,omitempty"`
	Books []book.Book `json:"books"`
	Error string      `json:"error,omitempty"`
}

// TypeaheadHandler serves GET /v1/me/typeahead. Inputs are debounced per
// field; a result whose input has been superseded is dropped.
type TypeaheadHandler struct {
	manager     *Manager
	delay       time.Duration
	checkOrigin func(r *http.Request) bool
}

func NewTypeaheadHandler(manager *Manager, delay time.Duration, allowedOrigins []string) *TypeaheadHandler {
	if delay <= 0 {
		delay = debounce.DefaultDelay
	}
	return &TypeaheadHandler{
		manager:     manager,
		delay:       delay,
		checkOrigin: originChecker(allowedOrigins),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

func (h *TypeaheadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := httpx.SessionIDFrom(r)
	if _, err := h.manager.state(r.Context(), sessionID); err != nil {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown session", nil)
		return
	}

	up := upgrader
	up.CheckOrigin = h.checkOrigin
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("typeahead upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &typeaheadClient{
		sessionID: sessionID,
		manager:   h.manager,
		conn:      conn,
		send:      make(chan TypeaheadMessage, 16),
		debouncer: debounce.NewGroup(h.delay),
		ctx:       ctx,
		cancel:    cancel,
	}
	go c.writePump()
	c.readPump()
}

type typeaheadClient struct {
	sessionID string
	manager   *Manager
	conn      *websocket.Conn
	send      chan TypeaheadMessage
	debouncer *debounce.Group

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (c *typeaheadClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in TypeaheadInput
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("session_id", c.sessionID).Msg("typeahead closed")
			}
			return
		}

		field, err := search.ParseField(in.Field)
		if err != nil {
			c.push(TypeaheadMessage{Type: "error", Field: in.Field, Error: err.Error()})
			continue
		}
		query := in.Query
		c.debouncer.Schedule(string(field), func(t debounce.Ticket) {
			c.lookup(t, field, query)
		})
	}
}

func (c *typeaheadClient) lookup(t debounce.Ticket, field search.Field, query string) {
	books, err := c.manager.Suggest(c.ctx, c.sessionID, query, field)
	if !t.Current() || c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.push(TypeaheadMessage{Type: "error", Field: string(field), Query: query, Error: "suggestions unavailable"})
		return
	}
	c.push(TypeaheadMessage{Type: "suggestions", Field: string(field), Query: query, Books: books})
}

// push never blocks the caller; a slow client loses messages.
func (c *typeaheadClient) push(msg TypeaheadMessage) {
	select {
	case <-c.ctx.Done():
	case c.send <- msg:
	default:
		log.Debug().Str("session_id", c.sessionID).Msg("typeahead send buffer full")
	}
}

func (c *typeaheadClient) close() {
	c.closeOnce.Do(func() {
		c.debouncer.Stop()
		c.cancel()
		_ = c.conn.Close()
	})
}

func (c *typeaheadClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
