package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vidresolve/internal/extract"
	"vidresolve/internal/httputil"
)

type outcome struct {
	url    string
	method string
	tried  []string
	err    *Error
}

// sequential runs methods in registration order and stops at the first
// validated candidate.
func (r *Resolver) sequential(ctx context.Context, log *zap.Logger, s *extract.Session) outcome {
	var tried []string
	var lastMethod string
	var lastErr error
	for _, m := range s.Adapter.Methods {
		if ctx.Err() != nil {
			break
		}
		tried = append(tried, m.Name)
		c, err := r.try(ctx, log, s, m)
		if err == nil {
			return outcome{url: c, method: m.Name, tried: tried}
		}
		if !errors.Is(err, extract.ErrSkipped) {
			lastMethod, lastErr = m.Name, err
		}
	}
	return outcome{tried: tried, err: methodError(ctx, s.Adapter.Kind, lastMethod, lastErr)}
}

// race starts every method at once; the first validated candidate wins and
// cancels the rest. Failures are reported in registration order so the
// error does not depend on timing.
func (r *Resolver) race(ctx context.Context, log *zap.Logger, s *extract.Session) outcome {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type done struct {
		idx int
		url string
		err error
	}
	methods := s.Adapter.Methods
	ch := make(chan done, len(methods))
	for i, m := range methods {
		go func() {
			c, err := r.try(rctx, log, s, m)
			ch <- done{idx: i, url: c, err: err}
		}()
	}

	tried := s.Adapter.MethodNames()
	errs := make([]error, len(methods))
	for range methods {
		d := <-ch
		if d.err == nil {
			return outcome{url: d.url, method: methods[d.idx].Name, tried: tried}
		}
		errs[d.idx] = d.err
	}

	var lastMethod string
	var lastErr error
	for i, err := range errs {
		if !errors.Is(err, extract.ErrSkipped) {
			lastMethod, lastErr = methods[i].Name, err
		}
	}
	return outcome{tried: tried, err: methodError(ctx, s.Adapter.Kind, lastMethod, lastErr)}
}

// try runs one method and validates its candidate. A panicking method is
// treated as a failed one.
func (r *Resolver) try(ctx context.Context, log *zap.Logger, s *extract.Session, m extract.Method) (c string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("method %s panicked: %v", m.Name, p)
			log.Error("extraction method panicked", zap.String("method", m.Name), zap.Any("panic", p))
		}
	}()

	raw, err := m.Run(ctx, s)
	if err != nil {
		log.Debug("method failed", zap.String("method", m.Name), zap.Error(err))
		return "", err
	}
	c, err = httputil.ValidateCandidate(raw)
	if err != nil {
		log.Debug("candidate rejected", zap.String("method", m.Name), zap.Error(err))
		return "", err
	}
	log.Debug("candidate accepted", zap.String("method", m.Name), zap.String("url", httputil.RedactURL(c)))
	return c, nil
}
