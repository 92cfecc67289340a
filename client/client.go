// Package client implements the HTTP transport for the Energy Transition
// Model engine API (api/v3). It handles token auth, retries, rate limiting
// and error mapping; the service package builds typed operations on top.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/quintel/etm/config"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	retries    int
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetries sets how often idempotent requests are retried on 5xx or
// transport errors.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New builds a client for the given engine base URL and API token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		userAgent:  "etm-go/1.0 (+https://github.com/quintel/etm)",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromSettings wires proxies, timeout, retries and rate limit from
// resolved settings.
func NewFromSettings(s config.Settings, opts ...Option) (*Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	hc := &http.Client{Timeout: defaultTimeout}
	if s.Timeout > 0 {
		hc.Timeout = s.Timeout
	}
	if proxyURL := s.ProxyHTTPS; proxyURL != "" || s.ProxyHTTP != "" {
		if proxyURL == "" {
			proxyURL = s.ProxyHTTP
		}
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		hc.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	}

	all := []Option{
		WithHTTPClient(hc),
		WithRetries(s.Retries),
		WithRateLimit(s.RateLimit),
	}
	all = append(all, opts...)
	return New(s.BaseURL, s.APIToken, all...), nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get decodes a JSON response into out. Query params may be nil.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) Put(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, payload, out)
}

// PutParams is Put with query parameters (sortable subtype selection).
func (c *Client) PutParams(ctx context.Context, path string, params url.Values, payload, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, params, payload, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// GetCSV fetches a text/csv endpoint and returns the raw body.
func (c *Client) GetCSV(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.do(req, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// UploadFile PUTs a single file as multipart/form-data under field "file".
func (c *Client) UploadFile(ctx context.Context, path, filename string, contents io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, contents); err != nil {
		return fmt.Errorf("copy file contents: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(req, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.decodeJSON(resp, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, payload, out any) error {
	var body io.Reader
	var raw []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		raw = encoded
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, params, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req, raw)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.decodeJSON(resp, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, body io.Reader) (*http.Request, error) {
	full := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(params) > 0 {
		full += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, full, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// do sends the request, rate limited and with bounded retries for idempotent
// methods. rawBody is re-wound between attempts.
func (c *Client) do(req *http.Request, rawBody []byte) (*http.Response, error) {
	requestID := uuid.NewString()
	attempts := 1
	if c.retries > 0 && idempotent(req.Method) {
		attempts += c.retries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
		}
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
			if rawBody != nil {
				req.Body = io.NopCloser(bytes.NewReader(rawBody))
			}
		}

		c.logger.Debug("etm_api_request",
			"request_id", requestID,
			"method", req.Method,
			"url", req.URL.String(),
			"attempt", attempt+1,
		)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("etm: request failed: %w", err)
			continue
		}
		if resp.StatusCode >= 500 && attempt < attempts-1 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = newAPIError(resp.StatusCode, body)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (c *Client) decodeJSON(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
