package resolve

import "vidresolve/internal/media"

// Status is the outcome of a Resolve call.
type Status string

const (
	StatusResolved    Status = "resolved"
	StatusUnresolved  Status = "unresolved"
	StatusPassthrough Status = "passthrough"
)

// Result describes one Resolve call. It is built once and not modified
// after Resolve returns.
type Result struct {
	Status   Status         `json:"status"`
	URL      string         `json:"url,omitempty"`
	Host     media.HostKind `json:"hostKind"`
	Reason   string         `json:"reason,omitempty"`
	Attempts int            `json:"attempts"`
	Method   string         `json:"method,omitempty"`
	Tried    []string       `json:"tried,omitempty"`
	Cached   bool           `json:"cached,omitempty"`
}

// Playable reports whether URL can be handed to a player.
func (r *Result) Playable() bool {
	return r.Status == StatusResolved || r.Status == StatusPassthrough
}

func (r *Result) clone() *Result {
	c := *r
	c.Tried = append([]string(nil), r.Tried...)
	return &c
}

// present returns the copy handed to the caller.
func (r *Result) present(o Options) *Result {
	c := r.clone()
	if !o.Diagnostics {
		c.Method = ""
		c.Tried = nil
	}
	return c
}
