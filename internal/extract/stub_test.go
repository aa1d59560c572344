package extract

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"vidresolve/internal/httputil"
)

type reply struct {
	status int
	body   string
	header http.Header
}

// stubDoer answers requests from a fixed route table keyed by method and URL.
type stubDoer struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []*httputil.Request
}

func newStubDoer() *stubDoer {
	return &stubDoer{routes: map[string]reply{}}
}

func (d *stubDoer) on(method, rawURL string, r reply) *stubDoer {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	d.routes[method+" "+rawURL] = r
	return d
}

func (d *stubDoer) get(rawURL, body string) *stubDoer {
	return d.on(http.MethodGet, rawURL, reply{body: body})
}

func (d *stubDoer) Do(ctx context.Context, req *httputil.Request) (*httputil.Response, error) {
	d.mu.Lock()
	d.calls = append(d.calls, req.Clone())
	r, ok := d.routes[req.Method+" "+req.URL]
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		r = reply{status: http.StatusNotFound}
	}
	if r.status >= 400 {
		return nil, &httputil.FetchError{Kind: httputil.KindHTTP, Status: r.status, URL: httputil.RedactURL(req.URL), Attempts: 1}
	}
	h := r.header
	if h == nil {
		h = make(http.Header)
	}
	return &httputil.Response{StatusCode: r.status, Header: h, Body: []byte(r.body), URL: req.URL}, nil
}

func (d *stubDoer) requests() []*httputil.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*httputil.Request(nil), d.calls...)
}

func newTestSession(t *testing.T, raw string, doer Doer, settings Settings) *Session {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	adapter := Default().Adapter(Default().Classify(u))
	return NewSession(u, adapter, doer, settings)
}
