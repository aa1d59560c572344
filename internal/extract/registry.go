package extract

import (
	"fmt"
	"net/url"
	"strings"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

// Registry maps hostnames to adapters. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	adapters []*Adapter
	generic  *Adapter
	byKind   map[media.HostKind]*Adapter
}

// NewRegistry validates and indexes the adapters. Classification checks
// adapters in the order given; generic handles everything else.
func NewRegistry(generic *Adapter, adapters ...*Adapter) (*Registry, error) {
	if generic == nil || generic.Kind != media.Generic {
		return nil, fmt.Errorf("registry: generic adapter missing")
	}
	if err := validateAdapter(generic); err != nil {
		return nil, err
	}

	r := &Registry{
		generic: generic,
		byKind:  map[media.HostKind]*Adapter{media.Generic: generic},
	}
	for _, a := range adapters {
		if a == nil {
			return nil, fmt.Errorf("registry: nil adapter")
		}
		if a.Kind == media.Generic {
			return nil, fmt.Errorf("registry: generic adapter registered twice")
		}
		if _, dup := r.byKind[a.Kind]; dup {
			return nil, fmt.Errorf("registry: duplicate adapter for %s", a.Kind)
		}
		if len(a.Hosts) == 0 {
			return nil, fmt.Errorf("registry: adapter %s has no hosts", a.Kind)
		}
		if err := validateAdapter(a); err != nil {
			return nil, err
		}
		r.adapters = append(r.adapters, a)
		r.byKind[a.Kind] = a
	}
	return r, nil
}

func validateAdapter(a *Adapter) error {
	if len(a.Methods) == 0 {
		return fmt.Errorf("registry: adapter %s has no methods", a.Kind)
	}
	seen := make(map[string]bool, len(a.Methods))
	for _, m := range a.Methods {
		if m.Name == "" || m.Run == nil {
			return fmt.Errorf("registry: adapter %s has an incomplete method", a.Kind)
		}
		if seen[m.Name] {
			return fmt.Errorf("registry: adapter %s has duplicate method %q", a.Kind, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// Classify returns the host kind for u. Unknown hosts are Generic.
func (r *Registry) Classify(u *url.URL) media.HostKind {
	host := strings.ToLower(u.Hostname())
	for _, a := range r.adapters {
		for _, h := range a.Hosts {
			if strings.Contains(host, h) {
				return a.Kind
			}
		}
	}
	return media.Generic
}

// Adapter returns the adapter for kind, falling back to the generic one.
func (r *Registry) Adapter(kind media.HostKind) *Adapter {
	if a, ok := r.byKind[kind]; ok {
		return a
	}
	return r.generic
}

// Adapters lists the host adapters in classification order, generic last.
func (r *Registry) Adapters() []*Adapter {
	out := make([]*Adapter, 0, len(r.adapters)+1)
	out = append(out, r.adapters...)
	return append(out, r.generic)
}

var defaultRegistry = mustRegistry(NewRegistry(
	genericAdapter(),
	cdaAdapter(),
	vkAdapter(),
	sibnetAdapter(),
	gdriveAdapter(),
	megaAdapter(),
	dailymotionAdapter(),
	luluvdoAdapter(),
	lycroisAdapter(),
))

func mustRegistry(r *Registry, err error) *Registry {
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the built-in registry covering every supported host.
func Default() *Registry {
	return defaultRegistry
}

// Classify validates raw and classifies it against the default registry.
func Classify(raw string) (media.HostKind, error) {
	u, err := httputil.ParseSource(raw)
	if err != nil {
		return media.Generic, err
	}
	return defaultRegistry.Classify(u), nil
}
