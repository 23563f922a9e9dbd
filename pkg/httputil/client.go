package httputil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Request describes a single exchange with a remote host. Body may be a
// streaming reader; ContentLength must then carry its exact size so the
// request is length-prefixed instead of chunked.
type Request struct {
	Method        string
	Scheme        string
	Host          string
	Path          string
	Header        map[string]string
	Body          io.Reader
	ContentLength int64
}

type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

type Client struct {
	client *http.Client
}

func NewClient(client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{client: client}
}

func (c *Client) HTTPClient() *http.Client {
	return c.client
}

func (r Request) URL() string {
	scheme := r.Scheme
	if scheme == "" {
		scheme = SchemeHTTPS
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.Path}
	return u.String()
}

// Send issues the request and reads the whole response body. The request
// body is borrowed: it is never closed, so callers keep ownership of files
// and streams they pass in.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = io.NopCloser(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range r.Header {
		req.Header.Set(k, v)
	}
	if r.Body != nil {
		req.ContentLength = r.ContentLength
		if r.ContentLength == 0 {
			req.Body = http.NoBody
		}
	}

	slog.Debug("Sending request", "method", r.Method, "host", r.Host, "path", r.Path, "bytes", r.ContentLength)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("Received response", "method", r.Method, "path", r.Path, "status", resp.StatusCode)

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       respBody,
	}, nil
}
