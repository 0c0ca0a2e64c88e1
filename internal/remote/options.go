package remote

import (
	"fmt"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPTimeout bounds a single HTTP request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the transport so each request/response is logged when enabled is true.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}

// WithRetry sets the attempt budget and backoff bounds for idempotent calls.
// maxAttempts of 1 disables retries.
func WithRetry(maxAttempts int, base, maxInterval time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts < 1 {
			return fmt.Errorf("max attempts must be >= 1")
		}
		if base <= 0 || maxInterval < base {
			return fmt.Errorf("invalid backoff bounds %v..%v", base, maxInterval)
		}
		c.retry = retryConfig{maxAttempts: maxAttempts, base: base, max: maxInterval}
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client. Apply it before other options.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client is nil")
		}
		c.http = hc
		return nil
	}
}
