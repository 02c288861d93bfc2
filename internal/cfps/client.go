package cfps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// StatusError reports a non-200 response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

// Client fetches raw CFPS responses.
type Client struct {
	httpClient *http.Client
	maxRetries int
	clock      clockwork.Clock
	logger     *zap.Logger
}

// NewClient creates a client with the given per-request timeout. Failed
// attempts are retried up to maxRetries times with exponential backoff.
func NewClient(timeout time.Duration, maxRetries int, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		clock:      clockwork.NewRealClock(),
		logger:     logger.Named("cfps-client"),
	}
}

// Fetch issues a GET for url and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying CFPS fetch",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(backoff):
			}
		}

		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			if attempt > 0 {
				c.logger.Info("Fetched CFPS data after retries",
					zap.String("url", url),
					zap.Int("attempts_needed", attempt+1))
			}
			return body, nil
		}

		lastErr = err
		c.logger.Warn("CFPS request failed",
			zap.String("url", url),
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.maxRetries+1))

		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	return body, nil
}

// retryable reports whether another attempt could succeed. Client errors
// (4xx) are final.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return true
}
