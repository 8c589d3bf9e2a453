package dashboard

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

	"github.com/username/commute-ride-bot/internal/submit"
	"github.com/username/commute-ride-bot/pkg/random"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetries    = 3
	defaultRetryDelay = time.Second
	retryJitter       = 20.0 // percent

	rideRequestPath = "/travels/request"
)

// statusError is a non-2xx response from the dashboard
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("dashboard request failed with status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether the request may succeed if sent again
func (e *statusError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client books rides through the dashboard's HTTP API
type Client struct {
	baseURL       string
	username      string
	password      string
	justification string
	retries       int
	retryDelay    time.Duration
	httpClient    *http.Client
	logger        *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRetries sets how many attempts a request gets and the base delay between them
func WithRetries(retries int, delay time.Duration) Option {
	return func(c *Client) {
		if retries > 0 {
			c.retries = retries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithJustification overrides the booking justification
func WithJustification(text string) Option {
	return func(c *Client) {
		if text != "" {
			c.justification = text
		}
	}
}

// NewClient creates a new dashboard API client
func NewClient(baseURL, username, password string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		username:      username,
		password:      password,
		justification: DefaultJustification,
		retries:       defaultRetries,
		retryDelay:    defaultRetryDelay,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit books one ride and maps the dashboard's answer to an Outcome:
// 409 means the ride is already booked, 422 that the booking window closed.
func (c *Client) Submit(ctx context.Context, req submit.RideRequest) (submit.Outcome, error) {
	body := RideRequestBody{
		Date:          req.DisplayDay,
		Time:          req.Time,
		From:          req.Origin,
		To:            req.Destination,
		Justification: c.justification,
	}

	var resp RideResponse
	err := c.doRequest(ctx, http.MethodPost, rideRequestPath, body, &resp)
	if err == nil {
		c.logger.Info("Ride booked",
			zap.String("id", resp.ID),
			zap.String("day", req.DisplayDay),
			zap.String("time", req.Time))
		return submit.OutcomeSuccess, nil
	}

	var se *statusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusConflict:
			return submit.OutcomeAlreadyBooked, nil
		case http.StatusUnprocessableEntity:
			return submit.OutcomePastCutoff, nil
		}
	}
	return submit.OutcomeTransientFailure, err
}

// doRequest performs HTTP request with retry logic
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = jsonData
	}

	url := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		err := c.doRequestOnce(ctx, method, url, payload, result)
		if err == nil {
			return nil
		}

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}

		lastErr = err
		c.logger.Warn("Request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.retries),
			zap.Error(err))

		if attempt < c.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(random.Jitter(c.retryDelay*time.Duration(attempt), retryJitter)):
			}
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retries, lastErr)
}

// doRequestOnce performs a single HTTP request
func (c *Client) doRequestOnce(ctx context.Context, method, url string, payload []byte, result interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
