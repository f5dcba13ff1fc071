// Package download fetches feed documents over HTTP with conditional GET and
// decodes them to UTF-8 text.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Syndic/1.0"
	DefaultMaxBytes  = 10 * 1024 * 1024

	acceptHeader = "application/rss+xml, application/atom+xml, application/rdf+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"
	maxRedirects = 10
)

type Request struct {
	URL          string
	LastModified string // previously seen Last-Modified value
	ETag         string // previously seen ETag value
}

type Result struct {
	Content      string
	NotModified  bool
	StatusCode   int
	LastModified string
	ETag         string
	RedirectURL  string // final URL when the request was redirected
	Encoding     string // canonical name of the charset the body was decoded from
}

// HTTPError is returned for any non-success status other than 304.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

var ErrBodyTooLarge = errors.New("response body too large")

// BodyTooLargeError is returned when the body exceeds the configured limit.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", e.Limit)
}

func (e *BodyTooLargeError) Is(target error) bool { return target == ErrBodyTooLarge }

type Config struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

type Downloader struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

func New(cfg Config) *Downloader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	return &Downloader{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
	}
}

// Download issues a conditional GET for r.URL. A 304 response yields a
// Result with NotModified set, no content and r's validators echoed back.
func (d *Downloader) Download(ctx context.Context, r Request) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", acceptHeader)

	if r.LastModified != "" {
		if t, err := http.ParseTime(r.LastModified); err == nil {
			req.Header.Set("If-Modified-Since", t.UTC().Format(http.TimeFormat))
		}
	}
	if r.ETag != "" {
		req.Header.Set("If-None-Match", quoteETag(r.ETag))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &Result{
			NotModified:  true,
			StatusCode:   resp.StatusCode,
			LastModified: r.LastModified,
			ETag:         r.ETag,
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	enc, encName := detectEncoding(resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(raw)) > d.maxBytes {
		return nil, &BodyTooLargeError{Limit: d.maxBytes}
	}

	data, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	result := &Result{
		Content:      string(data),
		StatusCode:   resp.StatusCode,
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Encoding:     encName,
	}

	if final := resp.Request.URL.String(); !strings.EqualFold(final, r.URL) {
		result.RedirectURL = final
	}

	return result, nil
}

// detectEncoding resolves the charset parameter of a Content-Type header.
// A missing or unknown charset falls back to UTF-8.
func detectEncoding(contentType string) (encoding.Encoding, string) {
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			label := strings.Trim(params["charset"], `"' `)
			if label != "" {
				if enc, err := htmlindex.Get(label); err == nil {
					if name, err := htmlindex.Name(enc); err == nil {
						return enc, name
					}
					return enc, strings.ToLower(label)
				}
			}
		}
	}
	return unicode.UTF8, "utf-8"
}

// quoteETag wraps a bare entity tag in quotes. Quoted and weak tags are
// sent unchanged.
func quoteETag(etag string) string {
	if strings.HasPrefix(etag, `"`) || strings.HasPrefix(etag, "W/") {
		return etag
	}
	return `"` + etag + `"`
}
