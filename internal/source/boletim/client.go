package boletim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"bulletin_sync/internal/domain"
	"bulletin_sync/internal/metrics"
)

const (
	tokenHeader  = "x-auth-token"
	maxBodyBytes = 32 << 20

	endpointFilters   = "filters"
	endpointBulletins = "bulletins"
	endpointBulletin  = "bulletin"
)

// Config holds bulletin API client configuration.
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Breaker        BreakerConfig
}

type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// StatusError is a non-2xx response that was not an authorization failure.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// PayloadError is a 200 response whose body carries an error envelope that is
// not an authorization failure. Retrying it gets the same answer.
type PayloadError struct {
	Messages string
}

func (e *PayloadError) Error() string {
	return "upstream error: " + e.Messages
}

// Client is a thin HTTP client for the bulletin API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[[]byte]
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	logger = logger.With("component", "boletim_client")

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		limiter:        rate.NewLimiter(limit, burst),
		breaker:        newBreaker("boletim-api", cfg.Breaker, logger),
		maxAttempts:    attempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger,
	}
}

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// Rejections and caller-side mistakes say nothing about the
		// remote's health.
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Filters performs the filter discovery call.
func (c *Client) Filters(ctx context.Context) (*FiltersResponse, error) {
	var resp FiltersResponse
	if err := c.get(ctx, endpointFilters, "/filtros", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Bulletins fetches one upstream page of a filter's bulletins, most recent
// first.
func (c *Client) Bulletins(ctx context.Context, filterID int64, page, perPage int) (*BulletinsResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("order", "desc")

	var resp BulletinsResponse
	path := fmt.Sprintf("/filtro/%d/boletins", filterID)
	if err := c.get(ctx, endpointBulletins, path, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Bulletin fetches one bulletin with its biddings and follow-ups.
func (c *Client) Bulletin(ctx context.Context, id int64) (*BulletinDetailResponse, error) {
	var resp BulletinDetailResponse
	if err := c.get(ctx, endpointBulletin, fmt.Sprintf("/boletim/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	body, err := c.fetch(ctx, endpoint, u)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint, u string) ([]byte, error) {
	var body []byte
	var err error
	attempts := 0

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		attempts = attempt
		body, err = c.breaker.Execute(func() ([]byte, error) {
			return c.doRequest(ctx, endpoint, u)
		})
		if err == nil {
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "rejected").Inc()
			return nil, fmt.Errorf("%s: %w", endpoint, err)
		}
		if !retryable(err) || attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if errors.Is(err, domain.ErrUnauthorized) {
		return nil, err
	}
	return nil, fmt.Errorf("%s after %d attempts: %w", endpoint, attempts, err)
}

func (c *Client) doRequest(ctx context.Context, endpoint, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "BulletinSync/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("read body: %w", err)
	}

	apiErrs := parseErrors(body)

	if msg, ok := authFailure(resp.StatusCode, apiErrs); ok {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "unauthorized").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet(body)}
	}

	if len(apiErrs) > 0 {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, &PayloadError{Messages: joinMessages(apiErrs)}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if c.maxBackoff > 0 && backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

// parseErrors extracts the error envelope, if the body carries one.
func parseErrors(body []byte) []APIError {
	var env ErrorResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return env.Errors
}

// authFailure reports whether the response says the token or the caller's
// origin IP was rejected.
func authFailure(status int, errs []APIError) (string, bool) {
	for _, e := range errs {
		if isAuthMessage(e.Message) {
			return e.Message, true
		}
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Sprintf("status %d", status), true
	}
	return "", false
}

func isAuthMessage(msg string) bool {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "token inv"):
		return true
	case strings.Contains(m, "invalid token"), strings.Contains(m, "token invalid"):
		return true
	case strings.Contains(m, "ip de origem"), strings.Contains(m, "origin ip"):
		return true
	}
	return false
}

func joinMessages(errs []APIError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func retryable(err error) bool {
	if errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var pe *PayloadError
	if errors.As(err, &pe) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
