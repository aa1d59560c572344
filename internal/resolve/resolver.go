// Package resolve turns a video page URL into a playable media URL. It
// classifies the source, runs the host adapter's extraction methods through
// the retrying fetcher, validates candidates and optionally caches results.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vidresolve/internal/cache"
	"vidresolve/internal/extract"
	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

// MethodDirect is reported when the source already points at media.
const MethodDirect = "direct"

// Resolver resolves source URLs. It is safe for concurrent use; the only
// state shared between calls is the registry and the cache.
type Resolver struct {
	fetcher  httputil.Fetcher
	registry *extract.Registry
	clock    httputil.Clock
	log      *zap.Logger
	settings extract.Settings

	store  cache.Store
	ttl    time.Duration
	flight singleflight.Group
}

// New returns a Resolver that performs requests through fetcher.
func New(fetcher httputil.Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:  fetcher,
		registry: extract.Default(),
		clock:    httputil.SystemClock{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the adapters this resolver uses.
func (r *Resolver) Registry() *extract.Registry {
	return r.registry
}

// Resolve returns a non-nil Result for every call. The error is non-nil
// exactly when the result is Unresolved and is then a *Error.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, o Options) (*Result, error) {
	o.Ensure()
	log := r.log.With(zap.String("resolve_id", uuid.NewString()))

	src, err := httputil.ParseSource(rawURL)
	if err != nil {
		e := &Error{Kind: InvalidInput, Host: media.Generic, Err: err}
		log.Debug("invalid source", zap.Error(err))
		return &Result{Status: StatusUnresolved, Host: media.Generic, Reason: e.Error()}, e
	}
	kind := r.registry.Classify(src)
	log = log.With(zap.String("source", httputil.RedactURL(src.String())), zap.Stringer("host", kind))

	if httputil.IsDirectMedia(src) {
		log.Debug("source is direct media")
		res := &Result{Status: StatusResolved, URL: strings.TrimSpace(rawURL), Host: kind, Method: MethodDirect}
		return res.present(o), nil
	}

	var res *Result
	var rerr *Error
	if r.store != nil && !o.NoCache {
		res, rerr = r.resolveCached(ctx, log, src, kind, o)
	} else {
		res, rerr = r.run(ctx, log, src, kind, o)
	}

	if rerr == nil {
		log.Info("resolved",
			zap.String("method", res.Method),
			zap.Int("attempts", res.Attempts),
			zap.Bool("cached", res.Cached))
		return res.present(o), nil
	}

	if o.PassthroughOnFailure && ctx.Err() == nil {
		log.Info("passing source through", zap.Stringer("reason", rerr.Kind))
		pt := res.clone()
		pt.Status, pt.URL, pt.Reason = StatusPassthrough, strings.TrimSpace(rawURL), rerr.Error()
		return pt.present(o), nil
	}
	log.Info("unresolved", zap.Stringer("kind", rerr.Kind), zap.Int("attempts", res.Attempts))
	return res.present(o), rerr
}

type flightResult struct {
	res *Result
	err *Error
}

// resolveCached serves from the store or joins the in-flight resolution
// for the same key. Waiters give up when their own context ends.
func (r *Resolver) resolveCached(ctx context.Context, log *zap.Logger, src *url.URL, kind media.HostKind, o Options) (*Result, *Error) {
	key := cacheKey(src, o)
	if res, ok := r.lookup(ctx, log, key); ok {
		return res, nil
	}

	ch := r.flight.DoChan(key, func() (any, error) {
		// The work outlives a single waiter giving up.
		fctx := context.WithoutCancel(ctx)
		if res, ok := r.lookup(fctx, log, key); ok {
			return flightResult{res: res}, nil
		}
		res, rerr := r.run(fctx, log, src, kind, o)
		if rerr == nil {
			r.save(fctx, log, key, res)
		}
		return flightResult{res: res, err: rerr}, nil
	})

	select {
	case <-ctx.Done():
		e := &Error{Kind: NetworkError, Host: kind, Err: ctx.Err()}
		return &Result{Status: StatusUnresolved, Host: kind, Reason: e.Error()}, e
	case v := <-ch:
		fr := v.Val.(flightResult)
		return fr.res.clone(), fr.err
	}
}

func cacheKey(src *url.URL, o Options) string {
	key := "v1|" + src.String()
	if o.DisableGeneric {
		key += "|nogeneric"
	}
	return key
}

func (r *Resolver) lookup(ctx context.Context, log *zap.Logger, key string) (*Result, bool) {
	b, ok, err := r.store.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(b, &res); err != nil || res.Status != StatusResolved {
		log.Warn("discarding unreadable cache entry", zap.Error(err))
		return nil, false
	}
	res.Cached = true
	res.Attempts = 0
	return &res, true
}

func (r *Resolver) save(ctx context.Context, log *zap.Logger, key string, res *Result) {
	b, err := json.Marshal(res)
	if err != nil {
		log.Warn("encoding cache entry", zap.Error(err))
		return
	}
	if err := r.store.Set(ctx, key, b, r.ttl); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
}

// run performs the network resolution: adapter selection, method execution
// and candidate validation.
func (r *Resolver) run(ctx context.Context, log *zap.Logger, src *url.URL, kind media.HostKind, o Options) (*Result, *Error) {
	res := &Result{Status: StatusUnresolved, Host: kind}
	if kind == media.Generic && o.DisableGeneric {
		e := &Error{Kind: UnsupportedHost, Host: kind, Err: fmt.Errorf("no adapter for host %q", src.Hostname())}
		res.Reason = e.Error()
		return res, e
	}

	adapter := r.registry.Adapter(kind)
	tr := &tracker{retrier: &httputil.Retrier{
		Fetcher:     r.fetcher,
		Clock:       r.clock,
		MaxAttempts: o.MaxRetries,
		BaseDelay:   o.BaseDelay,
		MaxDelay:    o.MaxDelay,
		Timeout:     o.Timeout,
		UserAgent:   o.UserAgent,
		Logger:      log,
	}}
	sess := extract.NewSession(src, adapter, tr, r.settings)

	var out outcome
	if o.RaceMethods && len(adapter.Methods) > 1 {
		out = r.race(ctx, log, sess)
	} else {
		out = r.sequential(ctx, log, sess)
	}

	res.Attempts = tr.count()
	res.Tried = out.tried
	if out.err != nil {
		res.Reason = out.err.Error()
		return res, out.err
	}
	res.Status, res.URL, res.Method = StatusResolved, out.url, out.method
	return res, nil
}

// tracker counts every network attempt made on behalf of one resolution.
type tracker struct {
	retrier  *httputil.Retrier
	attempts atomic.Int64
}

func (t *tracker) Do(ctx context.Context, req *httputil.Request) (*httputil.Response, error) {
	resp, attempts, err := t.retrier.Do(ctx, req)
	t.attempts.Add(int64(len(attempts)))
	return resp, err
}

func (t *tracker) count() int {
	return int(t.attempts.Load())
}
