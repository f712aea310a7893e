// Package http provides an HTTP implementation of harvest.Fetcher that
// presents itself as a desktop browser so news sites serve the same markup
// a reader would see.
package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/harvest"
)

// DefaultFetchTimeout is the timeout for page and image requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultStreamTimeout bounds connecting, receiving response headers and
// every wait for more body bytes during streamed video downloads. A download
// that keeps delivering data may take longer in total.
const DefaultStreamTimeout = 30 * time.Second

// Default request headers.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// Ensure Fetcher implements harvest.Fetcher at compile time.
var _ harvest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages, images and video streams over HTTP.
type Fetcher struct {
	client         *http.Client
	streamClient   *http.Client
	timeout        time.Duration
	streamTimeout  time.Duration
	userAgent      string
	acceptLanguage string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for page and image requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithStreamTimeout sets the response and idle read timeout for streamed
// downloads. Zero or less disables both.
// Defaults to DefaultStreamTimeout (30s) if not specified.
func WithStreamTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.streamTimeout = d
	}
}

// WithClient uses c for every request instead of the clients built from
// the timeout options. Useful to share a pooled client or substitute a fake
// transport in tests.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
		f.streamClient = c
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(f *Fetcher) {
		f.acceptLanguage = lang
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:        DefaultFetchTimeout,
		streamTimeout:  DefaultStreamTimeout,
		userAgent:      DefaultUserAgent,
		acceptLanguage: DefaultAcceptLanguage,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}
	if f.streamClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if f.streamTimeout > 0 {
			transport.DialContext = (&net.Dialer{Timeout: f.streamTimeout}).DialContext
			transport.ResponseHeaderTimeout = f.streamTimeout
		}
		f.streamClient = &http.Client{Transport: transport}
	}

	return f
}

// Fetch retrieves the URL and reads the whole body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*harvest.Response, error) {
	resp, err := f.do(ctx, f.client, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, harvest.WrapError(harvest.ENETWORK, err, "read body of %s", url)
	}

	return &harvest.Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Stream retrieves the URL and hands the unread body to the caller. A body
// that delivers nothing for longer than the stream timeout fails its pending
// Read with ENETWORK.
func (f *Fetcher) Stream(ctx context.Context, url string) (*harvest.Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	resp, err := f.do(ctx, f.streamClient, url)
	if err != nil {
		cancel()
		return nil, err
	}

	return &harvest.Stream{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        newIdleBody(resp.Body, f.streamTimeout, cancel, url),
	}, nil
}

func (f *Fetcher) do(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, harvest.WrapError(harvest.EINVALID, err, "build request for %s", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", DefaultAccept)
	req.Header.Set("Accept-Language", f.acceptLanguage)

	resp, err := client.Do(req)
	if err != nil {
		return nil, harvest.WrapError(harvest.ENETWORK, err, "get %s", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, harvest.Errorf(harvest.ENETWORK, "HTTP %d for %s", resp.StatusCode, url)
	}
	return resp, nil
}

// Close releases idle connections held by the underlying clients.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	f.streamClient.CloseIdleConnections()
	return nil
}

// String describes the fetcher configuration for logs.
func (f *Fetcher) String() string {
	return fmt.Sprintf("http.Fetcher(timeout=%s, stream=%s)", f.timeout, f.streamTimeout)
}
