// Package lineupapi is the client for the remote lineup service.
//
// The service selects and prices a lineup for a game mode. It is consumed
// purely as a request/response contract: one POST per render, answered
// with {"status": ..., "output": ...} where output is a JSON-encoded
// string holding the starters and bench collections.
//
// Requests are never retried. Any transport failure, HTTP status >= 300 or
// status other than SUCCEEDED is a REMOTE_SERVICE error and no partial
// lineup is returned.
package lineupapi

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/integrations"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
)

// DefaultTimeout bounds a single lineup request.
const DefaultTimeout = 30 * time.Second

// StatusSucceeded is the only status that carries a usable lineup.
const StatusSucceeded = "SUCCEEDED"

// APIKeyHeader carries the service credential.
const APIKeyHeader = "x-api-key"

// Response is the service envelope.
type Response struct {
	Status string `json:"status"`
	// Output is usually a JSON string wrapping the lineup document; a bare
	// JSON object is accepted as well.
	Output json.RawMessage `json:"output"`
}

// Client talks to the lineup service.
//
// A Client is safe for concurrent use.
type Client struct {
	*integrations.Client
	url string
}

// NewClient creates a client for the service at url authenticating with
// apiKey.
func NewClient(url, apiKey string) *Client {
	return NewClientWithTimeout(url, apiKey, DefaultTimeout)
}

// NewClientWithTimeout is NewClient with a custom request timeout.
func NewClientWithTimeout(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		Client: integrations.NewClient(integrations.NewHTTPClient(timeout), map[string]string{
			APIKeyHeader: apiKey,
		}),
		url: url,
	}
}

// FetchLineup requests a lineup for req.
//
// Returns a REMOTE_SERVICE error for transport failures, non-2xx responses,
// unsuccessful statuses and undecodable output.
func (c *Client) FetchLineup(ctx context.Context, req mode.Request) (lineup.Lineup, error) {
	var resp Response
	if err := c.PostJSON(ctx, c.url, req, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRemoteService, err, "request lineup")
	}
	if resp.Status != StatusSucceeded {
		return nil, errors.New(errors.ErrCodeRemoteService, "lineup service returned status %q", resp.Status)
	}

	doc, err := unwrapOutput(resp.Output)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRemoteService, err, "decode lineup output")
	}
	l, err := lineup.Decode(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRemoteService, err, "decode lineup output")
	}
	return l, nil
}

// unwrapOutput returns the lineup document, unquoting it when the service
// encoded it as a string.
func unwrapOutput(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New(errors.ErrCodeRemoteService, "response has no output")
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return []byte(s), nil
}
