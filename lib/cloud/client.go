// Package cloud talks to a component store over HTTP.
//
// The wire contract is small: POST {endpoint}/components saves a record,
// GET {endpoint}/components/{name} loads one, and a plain GET fetches a
// record from any URL. Bodies are passed through untouched; parsing is the
// caller's job.
package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxBody = 8 << 20

// Error describes a failed request. Status is zero when no response was
// received.
type Error struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cloud: %s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("cloud: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client is a component store client.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the store at endpoint. A trailing slash on the
// endpoint is ignored.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the store base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Save posts a JSON record and returns the response body verbatim.
func (c *Client) Save(ctx context.Context, record []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.endpoint+"/components", record)
}

// Load fetches a record by component name.
func (c *Client) Load(ctx context.Context, name string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.endpoint+"/components/"+url.PathEscape(name), nil)
}

// Fetch performs a plain GET against rawURL. The bearer token is only sent
// when rawURL is under the client's endpoint.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil)
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &Error{Method: method, URL: target, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" && c.endpoint != "" && strings.HasPrefix(target, c.endpoint+"/") {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &Error{Method: method, URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Method: method,
			URL:    target,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(data))),
		}
	}
	return data, nil
}
