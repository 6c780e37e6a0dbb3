package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/palpiteiro/palpiteiro/pkg/buildinfo"
	"github.com/palpiteiro/palpiteiro/pkg/httputil"
)

// Client provides the HTTP plumbing shared by the lineup service client and
// the asset downloader: default headers, status classification and bounded
// body reads. It never retries on its own; callers decide with
// [httputil.Retry].
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client. A nil httpClient means a fresh client with
// [DefaultTimeout]. Headers are applied to every request, after a default
// User-Agent.
func NewClient(httpClient *http.Client, headers map[string]string) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}
	return &Client{
		http:    httpClient,
		headers: headers,
	}
}

// Get performs a GET and returns the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(io.LimitReader(body, maxBodySize))
}

// PostJSON encodes in as the request body, performs a POST and decodes the
// response into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	body, err := c.doRequest(ctx, http.MethodPost, url, bytes.NewReader(payload),
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload io.Reader, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus accepts any 2xx. 5xx responses are retryable.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	if code == http.StatusNotFound {
		return ErrNotFound
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{Code: code, Body: string(bytes.TrimSpace(snippet))}
	if code >= 500 {
		return httputil.Retryable(fmt.Errorf("%w: %w", ErrNetwork, statusErr))
	}
	return statusErr
}
