package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "https://openlibrary.org"
	defaultCoverBaseURL = "https://covers.openlibrary.org"
	searchFields        = "key,title,author_name,subject,cover_i,first_sentence"
)

// ErrStatus is wrapped by errors for non-200 responses.
var ErrStatus = errors.New("unexpected status code")

type Client struct {
	httpClient   *http.Client
	userAgent    string
	baseURL      string
	coverBaseURL string
	limiter      *rate.Limiter
	maxRetries   int
	breaker      *gobreaker.CircuitBreaker[*SearchResponse]
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(userAgent string, rps int, maxRetries int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:    userAgent,
		baseURL:      defaultBaseURL,
		coverBaseURL: defaultCoverBaseURL,
		limiter:      rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries:   maxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*SearchResponse](gobreaker.Settings{
		Name:        "openlibrary",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// A caller that went away says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

// Doc is one search.json hit.
type Doc struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	AuthorNames   []string `json:"author_name"`
	Subjects      []string `json:"subject"`
	CoverID       int      `json:"cover_i"`
	FirstSentence []string `json:"first_sentence"`
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// Search queries search.json on one field: "title", "author", "subject"
// or "q" for free text.
func (c *Client) Search(ctx context.Context, field, query string, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set(field, query)
	params.Set("fields", searchFields)
	params.Set("limit", strconv.Itoa(limit))
	u := c.baseURL + "/search.json?" + params.Encode()

	return c.breaker.Execute(func() (*SearchResponse, error) {
		var res SearchResponse
		if err := c.get(ctx, u, &res); err != nil {
			return nil, err
		}
		return &res, nil
	})
}

// CoverURL returns the medium cover image URL for a cover id, or "" when
// the id is unset.
func (c *Client) CoverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-M.jpg", c.coverBaseURL, coverID)
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// do performs one request. It reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, url string, target any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}
