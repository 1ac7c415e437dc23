package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend request failed: %s - %s", e.Status, e.Body)
}

// PayloadError is returned when the backend answers 2xx with a body that is
// not a valid plan. Raw holds the payload as received.
type PayloadError struct {
	Raw []byte
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid itinerary payload: %v", e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// ClientConfig configures the backend client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// FailureThreshold consecutive failures open the breaker; OpenTimeout is
	// how long it stays open before a trial request.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client calls the itinerary generation backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewClient creates a backend client guarded by a circuit breaker.
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 3
	}
	if config.OpenTimeout == 0 {
		config.OpenTimeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "itinerary-backend",
		MaxRequests: 1,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: backendHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		breaker:  breaker,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// backendHealthy reports whether err leaves the backend's health
// unquestioned: the caller gave up, or the backend rejected the request.
func backendHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
	}
	return false
}

// Name identifies the backend in logs and the journal.
func (c *Client) Name() string {
	return "itinerary-backend"
}

// Generate asks the backend for a plan.
func (c *Client) Generate(ctx context.Context, req Request) (*Plan, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("itinerary backend unavailable: %w", err)
		}
		return nil, err
	}

	return result.(*Plan), nil
}

func (c *Client) generate(ctx context.Context, req Request) (*Plan, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/itinerary"
	c.logger.Debug("requesting itinerary",
		zap.String("url", url),
		zap.String("destination", req.Destination),
		zap.Int("days", req.Days),
		zap.String("budget", req.Budget),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       string(raw),
		}
	}

	plan, err := c.decode(raw)
	if err != nil {
		c.logger.Error("backend returned an invalid itinerary",
			zap.Error(err),
			zap.ByteString("payload", raw),
		)
		return nil, &PayloadError{Raw: raw, Err: err}
	}

	return plan, nil
}

func (c *Client) decode(raw []byte) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
