// Package remote talks to the two scoring services: the career advisor
// (recommendations, skill gaps, chat, forecasts) and the backend
// (personality scoring). Each service sits behind its own circuit breaker.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/metrics"
)

const (
	DefaultAdvisorURL = "http://localhost:8000"
	DefaultBackendURL = "http://localhost:8080/api"

	// personalityUserID is the fixed user the backend files results under.
	personalityUserID = "1"

	maxErrorBody = 4 << 10
)

// ErrStatus matches every *StatusError via errors.Is.
var ErrStatus = errors.New("unexpected status")

// StatusError is returned when a service answers with a non-2xx status.
type StatusError struct {
	Call       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Call, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Call, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	AdvisorURL  string
	BackendURL  string
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
	HTTPClient  *http.Client
}

// Client calls the advisor and backend services over JSON/HTTP.
type Client struct {
	advisorURL string
	backendURL string
	httpClient *http.Client
	advisor    *gobreaker.CircuitBreaker
	backend    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// New creates a Client.
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("remote")

	if opts.AdvisorURL == "" {
		opts.AdvisorURL = DefaultAdvisorURL
	}
	if opts.BackendURL == "" {
		opts.BackendURL = DefaultBackendURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		advisorURL: strings.TrimRight(opts.AdvisorURL, "/"),
		backendURL: strings.TrimRight(opts.BackendURL, "/"),
		httpClient: hc,
		advisor:    newBreaker("advisor", opts, logger),
		backend:    newBreaker("backend", opts, logger),
		logger:     logger,
	}
}

// halfOpenRequests is how many trial calls a half-open breaker lets through.
// An assessment submission calls recommend and skill-gaps concurrently.
const halfOpenRequests = 2

func newBreaker(name string, opts Options, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpenRequests,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("service", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Client errors and caller cancellation say nothing about service
		// health.
		IsSuccessful: func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})
}

// Recommend posts the profile to /career-recommendations.
func (c *Client) Recommend(ctx context.Context, p career.Profile) ([]career.CareerRecommendation, error) {
	var out []career.CareerRecommendation
	err := c.call(ctx, c.advisor, "recommend", http.MethodPost, c.advisorURL+"/career-recommendations", p, &out)
	return out, err
}

// SkillGaps posts the profile to /skill-gap-analysis.
func (c *Client) SkillGaps(ctx context.Context, p career.Profile) ([]career.SkillGap, error) {
	var out []career.SkillGap
	err := c.call(ctx, c.advisor, "skill-gaps", http.MethodPost, c.advisorURL+"/skill-gap-analysis", p, &out)
	return out, err
}

type chatRequest struct {
	Message     string `json:"message"`
	UserContext any    `json:"user_context"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat sends one message to the advisor and returns its reply. userContext
// is passed through as-is and may be nil.
func (c *Client) Chat(ctx context.Context, message string, userContext any) (string, error) {
	var out chatResponse
	err := c.call(ctx, c.advisor, "chat", http.MethodPost, c.advisorURL+"/chat",
		chatRequest{Message: message, UserContext: userContext}, &out)
	return out.Response, err
}

// JobForecasts fetches forecasts for a category ("all" for every category).
func (c *Client) JobForecasts(ctx context.Context, category string) ([]career.JobForecast, error) {
	q := url.Values{"category": {category}}
	var out []career.JobForecast
	err := c.call(ctx, c.advisor, "job-forecast", http.MethodGet, c.advisorURL+"/job-forecasting?"+q.Encode(), nil, &out)
	return out, err
}

// ScorePersonality posts the answer map (question index → letter) to the
// backend scorer.
func (c *Client) ScorePersonality(ctx context.Context, answers map[int]string) (career.PersonalityResult, error) {
	q := url.Values{"userId": {personalityUserID}}
	var out career.PersonalityResult
	err := c.call(ctx, c.backend, "personality-score", http.MethodPost, c.backendURL+"/personality/assess?"+q.Encode(), answers, &out)
	return out, err
}

// call runs one request through cb and records its outcome.
func (c *Client) call(ctx context.Context, cb *gobreaker.CircuitBreaker, name, method, target string, in, out any) error {
	start := time.Now()
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, name, method, target, in, out)
	})

	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	metrics.RemoteCalls.WithLabelValues(name, outcome).Inc()
	c.logger.Debug("remote call",
		zap.String("call", name),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err != nil && outcome == "rejected" {
		return fmt.Errorf("%s: %w", name, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, name, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", name, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", name, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Call: name, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", name, err)
	}
	return nil
}
