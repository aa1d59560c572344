// Package httputil provides the hardened HTTP transport, the fetch+retry
// controller and URL validation used by the resolver.
package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent is sent when the caller does not configure one.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

// maxBodySize caps how much of a response body is read into memory.
const maxBodySize = 10 * 1024 * 1024

// Request is a single outbound call made on behalf of an extraction method.
type Request struct {
	Method     string
	URL        string
	Header     http.Header
	Body       []byte
	NoRedirect bool // return 3xx responses instead of following them
}

// NewRequest returns a GET request for rawURL with an empty header set.
func NewRequest(method, rawURL string) *Request {
	return &Request{Method: method, URL: rawURL, Header: make(http.Header)}
}

// Clone returns a deep copy so retries never share header maps.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	return &c
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string // final URL after redirects
}

// Fetcher performs one HTTP exchange. Non-2xx statuses are not errors at this
// layer; the Retrier classifies them.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req *Request) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// NewClient creates a hardened HTTP client with secure defaults.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        32,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 8,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// HTTPFetcher is the production Fetcher backed by net/http.
type HTTPFetcher struct {
	client     *http.Client
	noRedirect *http.Client
	limiter    *HostLimiter
}

// NewHTTPFetcher wraps client. A nil limiter disables per-host throttling.
func NewHTTPFetcher(client *http.Client, limiter *HostLimiter) *HTTPFetcher {
	if client == nil {
		client = NewClient(0)
	}
	nr := *client
	nr.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &HTTPFetcher{client: client, noRedirect: &nr, limiter: limiter}
}

// Fetch performs the request and buffers at most 10MB of the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, r *Request) (*Response, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing request URL: %w", err)
	}
	if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := f.client
	if r.NoRedirect {
		client = f.noRedirect
	}
	resp, err := client.Do(req)
	if err != nil {
		// *url.Error embeds the full request URL, which may carry tokens.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("%s %s: %w", method, RedactURL(r.URL), uerr.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		URL:        resp.Request.URL.String(),
	}, nil
}
