package httputil

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindHTTP
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// FetchError is the terminal error of a fetch sequence. It carries the detail
// of the last attempt; URL is always redacted.
type FetchError struct {
	Kind       ErrorKind
	Status     int // set when Kind == KindHTTP
	URL        string
	Attempts   int
	RetryAfter time.Duration
	Err        error

	retryable bool
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error"
	}
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("http %d fetching %s (attempts=%d)", e.Status, e.URL, e.Attempts)
	case KindTimeout:
		return fmt.Sprintf("timeout fetching %s (attempts=%d)", e.URL, e.Attempts)
	default:
		if e.Err != nil {
			return fmt.Sprintf("network error (attempts=%d): %v", e.Attempts, e.Err)
		}
		return fmt.Sprintf("network error fetching %s (attempts=%d)", e.URL, e.Attempts)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether waiting and trying again could help.
func (e *FetchError) Retryable() bool { return e.retryable }

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return statusCode >= 500
	}
}
