// Package robots decides whether the scraper may fetch a URL according to the
// site's robots.txt.
package robots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// ErrUnavailable reports that robots.txt could not be retrieved or parsed.
var ErrUnavailable = errors.New("robots.txt unavailable")

// OnError policies applied when robots.txt cannot be retrieved.
const (
	OnErrorDeny  = "deny"
	OnErrorAllow = "allow"
)

const (
	maxRobotsBytes = 1 << 20
	disallowAll    = "User-agent: *\nDisallow: /\n"
)

// Config controls the permission check.
type Config struct {
	Respect   bool
	UserAgent string
	OnError   string
	Timeout   time.Duration
}

// Checker fetches and evaluates robots.txt for a target URL.
type Checker struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewChecker builds a Checker. A nil logger is replaced with a no-op logger.
func NewChecker(cfg Config, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OnError == "" {
		cfg.OnError = OnErrorDeny
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Allowed reports whether the configured user agent may fetch targetURL.
// When robots.txt cannot be loaded the OnError policy decides: deny returns
// false with an error wrapping ErrUnavailable, allow returns true.
func (c *Checker) Allowed(ctx context.Context, targetURL string) (bool, error) {
	if !c.cfg.Respect {
		return true, nil
	}
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("parse target url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return false, fmt.Errorf("target url %q is not absolute", targetURL)
	}

	data, err := c.load(ctx, parsed)
	if err != nil {
		if c.cfg.OnError == OnErrorAllow {
			c.logger.Warn("robots.txt unavailable; allowing access",
				zap.String("host", parsed.Host), zap.Error(err))
			return true, nil
		}
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return data.TestAgent(requestPath(parsed), c.cfg.UserAgent), nil
}

func (c *Checker) load(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	robotsURL := url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("Failed to close robots response body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Debug("robots.txt access denied; disallowing all",
			zap.String("url", robotsURL.String()),
			zap.Int("status_code", resp.StatusCode))
		return robotstxt.FromString(disallowAll)
	}
	// Other 4xx allow all, 5xx disallow all.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	c.logger.Debug("Loaded robots.txt",
		zap.String("url", robotsURL.String()),
		zap.Int("status_code", resp.StatusCode))
	return data, nil
}

func requestPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}
