// Package httpclient provides the shared outbound HTTP client.
package httpclient

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single outbound request.
	DefaultTimeout = 30 * time.Second

	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
)

// New creates a client with connection pooling. A non-positive timeout uses
// DefaultTimeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     idleConnTimeout,
		},
	}
}
