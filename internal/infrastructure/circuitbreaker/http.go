// Package circuitbreaker wraps outbound HTTP calls in sony/gobreaker so a
// failing upstream (Azure, Meta, Twilio) cannot pile up timed-out requests.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// HTTPClient is an http.Client guarded by a circuit breaker. 5xx responses
// count as failures.
type HTTPClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewHTTPClient creates a breaker-guarded HTTP client for one upstream.
func NewHTTPClient(name string, timeout time.Duration, log *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		breaker: cb,
		log:     log,
	}
}

// Do executes the request through the breaker.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// Drain so the transport can reuse the connection.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("upstream %s: status %d", c.breaker.Name(), resp.StatusCode)
		}
		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.Warn("Request blocked by open circuit",
				zap.String("name", c.breaker.Name()),
				zap.String("url", req.URL.String()),
			)
		}
		return nil, err
	}
	return result.(*http.Response), nil
}

// Get performs a GET request through the breaker.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// IsOpen reports whether the error came from an open circuit.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
