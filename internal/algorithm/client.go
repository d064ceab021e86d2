package algorithm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultGenerateTimeout = 30 * time.Second
	DefaultImageTimeout    = 10 * time.Second

	maxErrorBody = 512
)

// ErrImageNotFound upstream 返回 404
var ErrImageNotFound = errors.New("algorithm: image not found")

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("algorithm: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Result is the success shape of POST /generate.
type Result struct {
	PosterURL  string          `json:"poster_url"`
	PosterData json.RawMessage `json:"poster_data"`
}

// Image is a streamed image body; Close releases the connection and the
// request deadline.
type Image struct {
	Body        io.ReadCloser
	ContentType string
}

// Client calls the external poster algorithm service. Every call carries
// its own deadline and is never retried.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	generateTimeout time.Duration
	imageTimeout    time.Duration
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithTimeouts(generate, image time.Duration) Option {
	return func(c *Client) {
		if generate > 0 {
			c.generateTimeout = generate
		}
		if image > 0 {
			c.imageTimeout = image
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:      &http.Client{},
		generateTimeout: DefaultGenerateTimeout,
		imageTimeout:    DefaultImageTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate posts the prompt to /generate.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("algorithm: marshal request: %w", err)
	}
	endpoint := c.baseURL + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("algorithm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("algorithm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp, endpoint)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("algorithm: decode response: %w", err)
	}
	if out.PosterURL == "" {
		return nil, errors.New("algorithm: response missing poster_url")
	}
	return &out, nil
}

// FetchImage opens GET /poster/{id}/image. The caller must close Body.
func (c *Client) FetchImage(ctx context.Context, posterID string) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.imageTimeout)

	endpoint := c.baseURL + "/poster/" + url.PathEscape(posterID) + "/image"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("algorithm: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("algorithm: request failed: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		cancel()
		return nil, ErrImageNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := statusError(resp, endpoint)
		resp.Body.Close()
		cancel()
		return nil, err
	}

	return &Image{
		Body:        &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func statusError(resp *http.Response, endpoint string) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPStatusError{StatusCode: resp.StatusCode, URL: endpoint, Body: strings.TrimSpace(string(b))}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
