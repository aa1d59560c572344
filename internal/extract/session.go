package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/singleflight"

	"vidresolve/internal/httputil"
)

// Doer performs a request with whatever retry policy the caller chose.
type Doer interface {
	Do(ctx context.Context, req *httputil.Request) (*httputil.Response, error)
}

// Settings carries per-host credentials and knobs.
type Settings struct {
	VKToken      string
	VKAPIVersion string
}

// Session is the per-resolution state shared by an adapter's methods:
// the source URL, the adapter's request headers and the source page,
// fetched at most once.
type Session struct {
	Source   *url.URL
	Adapter  *Adapter
	Settings Settings

	doer   Doer
	flight singleflight.Group

	mu      sync.Mutex
	done    bool
	page    *httputil.Response
	pageErr error
}

// NewSession prepares a session for src. Nothing is fetched until a method asks.
func NewSession(src *url.URL, adapter *Adapter, doer Doer, settings Settings) *Session {
	return &Session{Source: src, Adapter: adapter, Settings: settings, doer: doer}
}

// Page returns the source page. Concurrent callers share one fetch and the
// outcome is memoized, except for context errors which a later caller may
// not share.
func (s *Session) Page(ctx context.Context) (*httputil.Response, error) {
	if ok, resp, err := s.cachedPage(); ok {
		return resp, err
	}
	v, err, _ := s.flight.Do("page", func() (any, error) {
		if ok, resp, err := s.cachedPage(); ok {
			return resp, err
		}
		resp, err := s.Get(ctx, s.Source.String())
		if err == nil || ctx.Err() == nil {
			s.mu.Lock()
			s.done, s.page, s.pageErr = true, resp, err
			s.mu.Unlock()
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*httputil.Response), nil
}

func (s *Session) cachedPage() (bool, *httputil.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.page, s.pageErr
}

// PageText returns the source page body as a string.
func (s *Session) PageText(ctx context.Context) (string, error) {
	resp, err := s.Page(ctx)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// Document parses the source page as HTML.
func (s *Session) Document(ctx context.Context) (*goquery.Document, error) {
	resp, err := s.Page(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// Do sends req with the adapter's headers and, if required, the source as Referer.
func (s *Session) Do(ctx context.Context, req *httputil.Request) (*httputil.Response, error) {
	req = req.Clone()
	if s.Adapter != nil {
		for k, v := range s.Adapter.Header {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}
		if s.Adapter.Referer && req.Header.Get("Referer") == "" {
			req.Header.Set("Referer", s.Source.String())
		}
	}
	return s.doer.Do(ctx, req)
}

// Get fetches rawURL through Do.
func (s *Session) Get(ctx context.Context, rawURL string) (*httputil.Response, error) {
	return s.Do(ctx, httputil.NewRequest(http.MethodGet, rawURL))
}

// Absolute resolves root- and protocol-relative references against the source.
func (s *Session) Absolute(ref string) string {
	return httputil.Absolute(s.Source, ref)
}
