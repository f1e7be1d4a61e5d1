package analysis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL    = "http://127.0.0.1:8000"
	DefaultRunPath    = "/analyze/run"
	DefaultHealthPath = "/"
	DefaultTimeout    = 60 * time.Second
	DefaultUserAgent  = "tenderscope"

	// maxBodyBytes bounds how much of a response body is read
	maxBodyBytes = 32 << 20

	// maxDetailBytes bounds the error detail kept from a failed response
	maxDetailBytes = 512
)

// Runner starts one remote analysis operation
type Runner interface {
	Run(ctx context.Context) (*Payload, error)
}

// ClientConfig configures the analysis endpoint client
type ClientConfig struct {
	BaseURL    string        `json:"base_url"`
	RunPath    string        `json:"run_path"`
	HealthPath string        `json:"health_path"`
	Timeout    time.Duration `json:"timeout"`
	UserAgent  string        `json:"user_agent"`
}

// DefaultClientConfig returns the settings of a locally running backend
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    DefaultBaseURL,
		RunPath:    DefaultRunPath,
		HealthPath: DefaultHealthPath,
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
	}
}

// Validate checks the client settings
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return NewFetchError(ErrTypeConfiguration, "base URL is required", "")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return NewFetchErrorWithCause(ErrTypeConfiguration, "invalid base URL", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewFetchError(ErrTypeConfiguration, fmt.Sprintf("unsupported scheme %q", u.Scheme), c.BaseURL)
	}

	if c.RunPath == "" {
		return NewFetchError(ErrTypeConfiguration, "run path is required", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return NewFetchError(ErrTypeConfiguration, "timeout must be positive", c.BaseURL)
	}

	return nil
}

// Client calls the analysis endpoint
type Client struct {
	config  *ClientConfig
	client  *http.Client
	baseURL *url.URL
}

// NewClient creates a client; a nil config uses the defaults
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, NewFetchErrorWithCause(ErrTypeConfiguration, "invalid base URL", config.BaseURL, err)
	}

	return &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
	}, nil
}

// RunEndpoint returns the absolute URL of the analysis operation
func (c *Client) RunEndpoint() string {
	return c.baseURL.JoinPath(c.config.RunPath).String()
}

// Run issues POST run_path with an empty body and decodes the response
func (c *Client) Run(ctx context.Context) (*Payload, error) {
	endpoint := c.RunEndpoint()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return nil, NewFetchErrorWithCause(ErrTypeTransport, "failed to create request", endpoint, err)
	}

	c.setHeaders(ctx, req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyRequestError(err, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewProtocolError(endpoint, resp.StatusCode, readDetail(resp.Body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyRequestError(err, endpoint)
	}

	payload, err := DecodePayload(body)
	if err != nil {
		return nil, NewFetchErrorWithCause(ErrTypeDecode, "response is not a JSON object", endpoint, err)
	}

	return payload, nil
}

// HealthCheck verifies the backend answers on its health path
func (c *Client) HealthCheck(ctx context.Context) error {
	path := c.config.HealthPath
	if path == "" {
		path = DefaultHealthPath
	}
	endpoint := c.baseURL.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return NewFetchErrorWithCause(ErrTypeTransport, "failed to create health check request", endpoint, err)
	}
	c.setHeaders(ctx, req)

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyRequestError(err, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewProtocolError(endpoint, resp.StatusCode, readDetail(resp.Body))
	}
	return nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	id := RequestIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", id)
}

func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxDetailBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

type requestIDKey struct{}

// WithRequestID tags ctx so the outgoing request carries id in X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, if any
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
