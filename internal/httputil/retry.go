package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults for the fetch+retry controller.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 30 * time.Second
	DefaultTimeout     = 15 * time.Second
)

// Attempt records one network call made by the Retrier.
type Attempt struct {
	Number    int
	StartedAt time.Time
	Duration  time.Duration
	Status    int   // 0 when no response was received
	Err       error // nil on success
}

// Retrier performs requests with bounded exponential backoff.
// Network errors, per-attempt timeouts, 429 and 5xx are retried;
// other 4xx statuses fail on the first attempt.
type Retrier struct {
	Fetcher     Fetcher
	Clock       Clock
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration // per attempt; 0 disables
	UserAgent   string
	Logger      *zap.Logger
}

// Do runs req until it succeeds, fails permanently, or MaxAttempts is reached.
// The returned attempts slice always holds every call that was made.
func (r *Retrier) Do(ctx context.Context, req *Request) (*Response, []Attempt, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	clock := r.clock()
	log := r.logger()

	var attempts []Attempt
	var lastErr *FetchError
	for n := 1; n <= maxAttempts; n++ {
		if n > 1 {
			delay := r.backoff(n-2, lastErr)
			log.Debug("retrying request",
				zap.String("url", lastErr.URL),
				zap.Int("attempt", n),
				zap.Duration("delay", delay))
			if err := clock.Sleep(ctx, delay); err != nil {
				lastErr = contextError(err, req.URL, len(attempts))
				break
			}
		}

		resp, a, ferr := r.attempt(ctx, clock, req, n)
		attempts = append(attempts, a)
		if ferr == nil {
			return resp, attempts, nil
		}
		ferr.Attempts = len(attempts)
		lastErr = ferr
		if !ferr.Retryable() {
			break
		}
	}
	lastErr.Attempts = len(attempts)
	return nil, attempts, lastErr
}

func (r *Retrier) attempt(ctx context.Context, clock Clock, req *Request, n int) (*Response, Attempt, *FetchError) {
	a := Attempt{Number: n, StartedAt: clock.Now()}

	actx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	resp, err := r.Fetcher.Fetch(actx, r.prepare(req))
	a.Duration = clock.Now().Sub(a.StartedAt)
	redacted := RedactURL(req.URL)

	if err != nil {
		a.Err = err
		switch {
		case ctx.Err() != nil:
			return nil, a, contextError(ctx.Err(), req.URL, n)
		case errors.Is(actx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
			return nil, a, &FetchError{Kind: KindTimeout, URL: redacted, Err: err, retryable: true}
		default:
			return nil, a, &FetchError{Kind: KindNetwork, URL: redacted, Err: err, retryable: true}
		}
	}

	a.Status = resp.StatusCode
	if resp.StatusCode >= 400 {
		ferr := &FetchError{
			Kind:      KindHTTP,
			Status:    resp.StatusCode,
			URL:       redacted,
			retryable: RetryableStatus(resp.StatusCode),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			ferr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		a.Err = ferr
		return nil, a, ferr
	}
	return resp, a, nil
}

// prepare fills in browser-like defaults without mutating the caller's request.
func (r *Retrier) prepare(req *Request) *Request {
	c := req.Clone()
	if c.Header.Get("User-Agent") == "" {
		ua := r.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		c.Header.Set("User-Agent", ua)
	}
	if c.Header.Get("Accept") == "" {
		c.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	}
	if c.Header.Get("Accept-Language") == "" {
		c.Header.Set("Accept-Language", "en-US,en;q=0.5")
	}
	return c
}

// backoff returns min(BaseDelay * 2^retry, MaxDelay), raised to Retry-After when present.
func (r *Retrier) backoff(retry int, last *FetchError) time.Duration {
	base := r.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	maxDelay := r.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	if retry > 30 {
		retry = 30
	}
	delay := base << uint(retry)
	if delay <= 0 || delay > maxDelay {
		delay = maxDelay
	}
	if last != nil && last.RetryAfter > delay {
		delay = min(last.RetryAfter, maxDelay)
	}
	return delay
}

func (r *Retrier) clock() Clock {
	if r.Clock == nil {
		return SystemClock{}
	}
	return r.Clock
}

func (r *Retrier) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func contextError(err error, rawURL string, attempts int) *FetchError {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &FetchError{Kind: kind, URL: RedactURL(rawURL), Attempts: attempts, Err: err}
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
