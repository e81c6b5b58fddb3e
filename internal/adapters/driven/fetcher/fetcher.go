// Package fetcher retrieves web pages over HTTP for the web normaliser.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 10 << 20
	DefaultUserAgent = "docchat/1.0 (+https://github.com/custodia-labs/docchat)"
)

// Config holds configuration for the HTTP fetcher.
type Config struct {
	// Timeout bounds the whole request (default: 30s).
	Timeout time.Duration

	// MaxBytes caps the body size (default: 10 MiB).
	MaxBytes int64

	// UserAgent is sent with every request.
	UserAgent string

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Fetcher performs GET requests.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{client: client, maxBytes: cfg.MaxBytes, userAgent: cfg.UserAgent}
}

// Fetch retrieves rawURL. Only http and https are allowed. MaxBytes bounds
// the body as sent; it is then decoded to UTF-8 according to the declared
// or sniffed charset. Every failure wraps domain.ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*driven.FetchedPage, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid URL %q", domain.ErrFetch, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	done := logger.Timed("fetch " + u.Host)
	defer done()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetch, u.Host, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrFetch, err)
	}
	if int64(len(raw)) > f.maxBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", domain.ErrFetch, f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	body := raw
	if reader, err := charset.NewReader(bytes.NewReader(raw), contentType); err != nil {
		logger.Debug("charset detection failed for %s: %v", u, err)
	} else if body, err = io.ReadAll(reader); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", domain.ErrFetch, err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(raw)
	}

	return &driven.FetchedPage{
		URL:         resp.Request.URL.String(),
		ContentType: contentType,
		Body:        body,
	}, nil
}
