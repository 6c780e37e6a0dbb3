package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request of a [Client] built without an
// explicit http.Client.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 20 << 20

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// StatusError is returned for non-success HTTP responses. Body holds the
// beginning of the response body for diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// NewHTTPClient creates an HTTP client with the given timeout and its own
// transport. Clients built this way share no connection pool, so a slow
// host stalls only the session that talks to it.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{Timeout: timeout, Transport: transport}
}
