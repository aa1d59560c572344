// Package server exposes the resolver over HTTP for players that cannot
// link the Go API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"vidresolve/internal/cache"
	"vidresolve/internal/httputil"
	"vidresolve/internal/resolve"
)

// Server serves the resolve API.
type Server struct {
	resolver *resolve.Resolver
	base     resolve.Options
	store    cache.Store
	log      *zap.Logger
	version  string
}

// New returns a Server resolving with base options; query parameters may
// switch individual flags on per request. store may be nil.
func New(r *resolve.Resolver, base resolve.Options, store cache.Store, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{resolver: r, base: base, store: store, log: log, version: version}
}

// Handler returns the routed handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /api/v1/hosts", s.hosts)
	mux.HandleFunc("GET /api/v1/resolve", s.resolve)
	return s.recovery(s.logging(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "version": s.version}
	status := http.StatusOK
	if p, ok := s.store.(cache.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp["cache"] = "ok"
		}
	}
	writeJSON(w, status, resp)
}

type hostInfo struct {
	Kind    string   `json:"kind"`
	Hosts   []string `json:"hosts"`
	Methods []string `json:"methods"`
}

func (s *Server) hosts(w http.ResponseWriter, _ *http.Request) {
	var out []hostInfo
	for _, a := range s.resolver.Registry().Adapters() {
		hosts := a.Hosts
		if hosts == nil {
			hosts = []string{}
		}
		out = append(out, hostInfo{Kind: a.Kind.String(), Hosts: hosts, Methods: a.MethodNames()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s.base
	opts.PassthroughOnFailure = opts.PassthroughOnFailure || flag(q.Get("passthrough"))
	opts.Diagnostics = opts.Diagnostics || flag(q.Get("diagnostics"))
	opts.RaceMethods = opts.RaceMethods || flag(q.Get("race"))
	opts.NoCache = opts.NoCache || flag(q.Get("nocache"))

	res, err := s.resolver.Resolve(r.Context(), q.Get("url"), opts)
	writeJSON(w, statusFor(err), res)
}

// statusFor maps a resolve error to the HTTP status of the response.
func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if resolve.IsKind(err, resolve.InvalidInput) {
		return http.StatusBadRequest
	}
	var fe *httputil.FetchError
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &fe) && fe.Kind == httputil.KindTimeout) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func flag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
