package resolve

import (
	"time"

	"go.uber.org/zap"

	"vidresolve/internal/cache"
	"vidresolve/internal/extract"
	"vidresolve/internal/httputil"
)

// DefaultCacheTTL is how long resolved results are kept when caching is on.
const DefaultCacheTTL = 5 * time.Minute

// Options tune a single Resolve call. Zero values mean defaults.
type Options struct {
	MaxRetries int           // total attempts per request
	BaseDelay  time.Duration // first backoff delay
	MaxDelay   time.Duration // backoff cap
	Timeout    time.Duration // per attempt
	UserAgent  string

	PassthroughOnFailure bool
	RaceMethods          bool
	DisableGeneric       bool
	NoCache              bool
	Diagnostics          bool
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	var o Options
	o.Ensure()
	return o
}

// Ensure replaces zero or negative values with defaults.
func (o *Options) Ensure() {
	if o.MaxRetries <= 0 {
		o.MaxRetries = httputil.DefaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = httputil.DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = httputil.DefaultMaxDelay
	}
	if o.MaxDelay < o.BaseDelay {
		o.MaxDelay = o.BaseDelay
	}
	if o.Timeout <= 0 {
		o.Timeout = httputil.DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = httputil.DefaultUserAgent
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry replaces the built-in host adapters.
func WithRegistry(r *extract.Registry) Option {
	return func(res *Resolver) { res.registry = r }
}

// WithClock injects the clock used for backoff.
func WithClock(c httputil.Clock) Option {
	return func(res *Resolver) { res.clock = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(res *Resolver) { res.log = l }
}

// WithCache enables result caching in store. A ttl <= 0 uses DefaultCacheTTL.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(res *Resolver) {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		res.store, res.ttl = store, ttl
	}
}

// WithSettings passes host credentials such as the VK token to adapters.
func WithSettings(s extract.Settings) Option {
	return func(res *Resolver) { res.settings = s }
}
