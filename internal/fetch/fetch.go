// Package fetch retrieves raw content documents from a remote or local source.
//
// A content source is addressed as {baseURL}/{resolved path}. Both http(s)
// and file URLs are accepted as base; file URLs are served through
// http.NewFileTransport so missing files surface as 404 like a remote miss.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Sentinel errors.
var (
	ErrFetch       = errors.New("content fetch failed")
	ErrNetwork     = errors.New("content source unreachable")
	ErrInvalidPath = errors.New("invalid content path")
	ErrNoBaseURL   = errors.New("no content base URL")
)

// MaxBodySize caps the size of a fetched document (default 10MB).
var MaxBodySize int64 = 10 << 20

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s: %d %s", ErrFetch, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool { return target == ErrFetch }

// TransportError reports a failure before any response was received.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrNetwork, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrNetwork }

// RawDocument is a fetched document. Source is never modified after fetch.
type RawDocument struct {
	Path    string
	URL     string
	Source  string
	Fetched time.Time
}

// Fetcher retrieves content over HTTP.
type Fetcher struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client. Its transport replaces the default one,
// so file URLs only work if the client's transport handles them.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Fetcher whose default base URL is baseURL.
func New(baseURL string, opts ...Option) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	f := &Fetcher{
		client:  &http.Client{Transport: transport},
		baseURL: baseURL,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BaseURL returns the default base URL.
func (f *Fetcher) BaseURL() string { return f.baseURL }

// Fetch performs GET {baseURL}/{ResolvePath(path)}.
// An empty baseURL falls back to the Fetcher's default. No retry is done.
func (f *Fetcher) Fetch(ctx context.Context, path, baseURL string) (*RawDocument, error) {
	target, err := f.URL(path, baseURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	f.logger.Debug("fetching content", "url", target)
	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	if int64(len(body)) > MaxBodySize {
		return nil, fmt.Errorf("%w: %s: body exceeds %d bytes", ErrFetch, target, MaxBodySize)
	}

	return &RawDocument{
		Path:    path,
		URL:     target,
		Source:  string(body),
		Fetched: f.now(),
	}, nil
}

// Probe checks that an asset URL answers with a 2xx status.
// HEAD is tried first; servers rejecting HEAD get a GET.
func (f *Fetcher) Probe(ctx context.Context, assetURL string) error {
	status, err := f.probe(ctx, http.MethodHead, assetURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = f.probe(ctx, http.MethodGet, assetURL)
	}
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &StatusError{URL: assetURL, StatusCode: status}
	}
	return nil
}

func (f *Fetcher) probe(ctx context.Context, method, assetURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, assetURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, &TransportError{URL: assetURL, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// URL builds the request URL for path under baseURL.
func (f *Fetcher) URL(path, baseURL string) (string, error) {
	if baseURL == "" {
		baseURL = f.baseURL
	}
	if baseURL == "" {
		return "", ErrNoBaseURL
	}
	resolved, err := ResolvePath(path)
	if err != nil {
		return "", err
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" {
		return "", fmt.Errorf("%w: base URL %q", ErrInvalidPath, baseURL)
	}
	return base.JoinPath(strings.Split(resolved, "/")...).String(), nil
}

// ResolvePath percent-decodes path and restores spaces in its final segment.
// Hyphens in the final segment stand for spaces in human-authored filenames.
// The result is NFC-normalized so decomposed Hangul and accents match the
// names stored by the content repository.
func ResolvePath(path string) (string, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	decoded, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	segments := strings.Split(decoded, "/")
	for _, s := range segments {
		if s == ".." || s == "." || s == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	last := len(segments) - 1
	segments[last] = strings.ReplaceAll(segments[last], "-", " ")

	return norm.NFC.String(strings.Join(segments, "/")), nil
}
