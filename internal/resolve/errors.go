package resolve

import (
	"context"
	"errors"
	"fmt"

	"vidresolve/internal/extract"
	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

// ErrorKind says why a source could not be resolved.
type ErrorKind int

const (
	InvalidInput ErrorKind = iota
	NetworkError
	HTTPError
	NoCandidateFound
	InvalidCandidate
	UnsupportedHost
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NetworkError:
		return "network_error"
	case HTTPError:
		return "http_error"
	case NoCandidateFound:
		return "no_candidate_found"
	case InvalidCandidate:
		return "invalid_candidate"
	case UnsupportedHost:
		return "unsupported_host"
	default:
		return "unknown"
	}
}

// Error is returned with every Unresolved result.
type Error struct {
	Kind   ErrorKind
	Host   media.HostKind
	Method string // method whose failure decided Kind, if any
	Status int    // HTTP status for HTTPError
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Kind == HTTPError && e.Status != 0 {
		msg = fmt.Sprintf("%s %d", msg, e.Status)
	}
	msg = fmt.Sprintf("%s (host=%s", msg, e.Host)
	if e.Method != "" {
		msg += ", method=" + e.Method
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// methodError maps the last meaningful method failure to an *Error.
// A nil err means every method was skipped or found nothing.
func methodError(ctx context.Context, host media.HostKind, method string, err error) *Error {
	e := &Error{Kind: NoCandidateFound, Host: host, Method: method, Err: err}
	if cerr := ctx.Err(); cerr != nil {
		e.Kind, e.Err = NetworkError, cerr
		return e
	}
	if err == nil {
		e.Err = extract.ErrNoMatch
		return e
	}

	var fe *httputil.FetchError
	switch {
	case errors.As(err, &fe) && fe.Kind == httputil.KindHTTP:
		e.Kind, e.Status = HTTPError, fe.Status
	case errors.As(err, &fe):
		e.Kind = NetworkError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		e.Kind = NetworkError
	case errors.Is(err, httputil.ErrRejected):
		e.Kind = InvalidCandidate
	}
	return e
}
