// Package misskey is a small client for the Misskey API, covering what is
// needed to collect a user's notes.
//
// # Usage
//
//	client := misskey.NewClient("misskey.io", os.Getenv("MISSKEY_API_KEY"))
//	user, err := client.ResolveUser(ctx, "alice", "")
//	n, err := client.Collect(ctx, user.ID, "", func(page []misskey.Note) error {
//	    return save(page)
//	})
//
// Every endpoint is a JSON POST to https://{host}/api/{endpoint} with the
// access token in the "i" field of the body.
package misskey

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultHost is the instance used when none is configured.
	DefaultHost = "voskey.icalo.net"

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	// DefaultPageDelay is the pause between two note pages.
	DefaultPageDelay = time.Second

	// PageLimit is the largest page users/notes returns.
	PageLimit = 100
)

// Client talks to one Misskey instance.
type Client struct {
	host   string
	config *clientConfig
	http   *httpClient
}

type clientConfig struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	pageDelay  time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

// WithBaseURL overrides the API base URL, which defaults to
// https://{host}/api.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = strings.TrimSuffix(url, "/") }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) { c.timeout = timeout }
}

// WithRetry sets how often a failed request is retried. Rate limiting,
// server errors and network errors are retried with exponential backoff
// starting at backoff.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *clientConfig) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithPageDelay sets the pause between note pages in Collect.
func WithPageDelay(d time.Duration) Option {
	return func(c *clientConfig) { c.pageDelay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// NewClient returns a client for the instance at host. An empty host selects
// DefaultHost.
func NewClient(host, apiKey string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	cfg := &clientConfig{
		apiKey:     apiKey,
		baseURL:    "https://" + host + "/api",
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    time.Second,
		pageDelay:  DefaultPageDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: cfg.timeout}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Client{host: host, config: cfg, http: newHTTPClient(cfg)}
}

// Host returns the instance host.
func (c *Client) Host() string { return c.host }

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.config.baseURL }
