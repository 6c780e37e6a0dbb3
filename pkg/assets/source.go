package assets

import (
	"context"
	"time"

	"github.com/palpiteiro/palpiteiro/pkg/integrations"
)

// Source downloads the bytes behind a URL.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SourceFactory returns a new Source for each fetch task.
type SourceFactory func() Source

// HTTPSource downloads over HTTP with its own client and connection pool.
type HTTPSource struct {
	client *integrations.Client
}

// NewHTTPSource creates a source whose requests time out after timeout.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		client: integrations.NewClient(integrations.NewHTTPClient(timeout), map[string]string{
			"Accept": "image/*",
		}),
	}
}

// HTTPSourceFactory returns a factory producing a fresh HTTPSource per task.
func HTTPSourceFactory(timeout time.Duration) SourceFactory {
	return func() Source { return NewHTTPSource(timeout) }
}

// Fetch performs a GET. Network errors and 5xx responses are retryable.
func (s *HTTPSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.client.Get(ctx, url)
}
