// Package extract turns host page URLs into candidate media URLs. Each
// supported host has an Adapter holding an ordered list of extraction
// methods; the first method to produce a usable candidate wins.
package extract

import (
	"context"
	"errors"

	"vidresolve/internal/media"
)

var (
	// ErrNoMatch is returned by a method that found nothing on the page.
	ErrNoMatch = errors.New("no candidate found")

	// ErrSkipped is returned by a method that does not apply to this source,
	// for example the VK API method when no access token is configured.
	ErrSkipped = errors.New("method not applicable")
)

// Method is a single named strategy for pulling a media URL out of a source.
// Methods hold no state; everything they need comes through the Session.
type Method struct {
	Name string
	Run  func(ctx context.Context, s *Session) (string, error)
}

// Adapter groups the extraction methods for one video host.
type Adapter struct {
	Kind    media.HostKind
	Hosts   []string          // hostname substrings this adapter claims
	Header  map[string]string // extra headers sent with every request
	Referer bool              // send the source URL as Referer
	Methods []Method
}

// MethodNames returns the method names in execution order.
func (a *Adapter) MethodNames() []string {
	names := make([]string, len(a.Methods))
	for i, m := range a.Methods {
		names[i] = m.Name
	}
	return names
}
