package jobapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/optima/pkg/buildinfo"
	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/httputil"
	"github.com/matzehuels/optima/pkg/poller"
)

// maxBody caps how much of a response body is read.
const maxBody = 4 << 20

// Client talks to one optimization server.
type Client struct {
	base     *url.URL
	http     *http.Client
	headers  map[string]string
	logger   *log.Logger
	attempts int
	delay    time.Duration
}

var _ poller.Transport = (*Client)(nil)

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry sets the attempts and initial delay used for kill requests.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		if delay > 0 {
			c.delay = delay
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse base url")
	}

	c := &Client{
		base:     u,
		http:     httputil.NewClient(0),
		headers:  map[string]string{"Accept": "application/json", "User-Agent": buildinfo.UserAgent()},
		logger:   log.Default(),
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string { return strings.TrimRight(c.base.String(), "/") }

// Resolve turns a server path (or absolute URL) into an absolute URL.
func (c *Client) Resolve(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url %q", ref)
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	return c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(r.Path, "/"), RawQuery: r.RawQuery}).String(), nil
}

// Check fetches the status document at ref. Failures are not retried; the
// poller turns them into a terminal update.
func (c *Client) Check(ctx context.Context, ref string) (*poller.Payload, error) {
	body, err := c.do(ctx, http.MethodGet, ref)
	if err != nil {
		return nil, err
	}
	return poller.DecodePayload(body)
}

// Start launches a task and returns the server's first status document.
func (c *Client) Start(ctx context.Context, resourceID, jobType string) (*poller.Payload, error) {
	if err := validateTask(resourceID, jobType); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, TaskPath(resourceID, jobType))
	if err != nil {
		return nil, err
	}
	return poller.DecodePayload(body)
}

// Kill cancels the task of jobType on resourceID. Network failures and 5xx
// responses are retried with exponential backoff.
func (c *Client) Kill(ctx context.Context, resourceID, jobType string) error {
	if err := validateTask(resourceID, jobType); err != nil {
		return err
	}
	path := TaskPath(resourceID, jobType)
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		_, err := c.do(ctx, http.MethodDelete, path)
		if httputil.IsRetryable(err) {
			c.logger.Debug("kill failed, retrying", "path", path, "error", err)
		}
		return err
	})
}

func validateTask(resourceID, jobType string) error {
	if err := errors.ValidatePathSegment("resource id", resourceID); err != nil {
		return err
	}
	return errors.ValidatePathSegment("job type", jobType)
}

func (c *Client) do(ctx context.Context, method, ref string) ([]byte, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "%s %s", method, target)
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, target))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", target))
	}
	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

func checkStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeJobNotFound, "not found")
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "server error: %s", statusText(code, body)))
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected response: %s", statusText(code, body))
	}
}

func statusText(code int, body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return fmt.Sprintf("%d %s", code, http.StatusText(code))
	}
	return fmt.Sprintf("%d %s", code, s)
}
