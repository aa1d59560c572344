package extract

import (
	"context"
	"regexp"
	"strings"

	"vidresolve/internal/media"
)

var (
	megaPathRe     = regexp.MustCompile(`^/(?:embed|file)/([A-Za-z0-9_-]+)`)
	megaFragmentRe = regexp.MustCompile(`^!([A-Za-z0-9_-]+)!([A-Za-z0-9_-]+)`)
)

func megaAdapter() *Adapter {
	return &Adapter{
		Kind:  media.Mega,
		Hosts: []string{"mega.nz", "mega.co.nz", "mega.io"},
		Methods: []Method{
			{Name: "mega_link", Run: megaLink},
		},
	}
}

// megaLink rewrites embed and legacy links to the canonical file link.
// Mega decrypts in the browser, so no request is made.
func megaLink(_ context.Context, s *Session) (string, error) {
	id, key, ok := megaParts(s.Source.Path, s.Source.Fragment)
	if !ok {
		return "", ErrNoMatch
	}
	return "https://mega.nz/file/" + id + "#" + key, nil
}

func megaParts(path, fragment string) (string, string, bool) {
	// /#!id!key and /embed#!id!key
	if m := megaFragmentRe.FindStringSubmatch(fragment); m != nil {
		return m[1], m[2], true
	}
	// /embed/id#key and /file/id#key
	if m := megaPathRe.FindStringSubmatch(path); m != nil {
		key := strings.TrimPrefix(fragment, "!")
		if key == "" {
			return "", "", false
		}
		return m[1], key, true
	}
	return "", "", false
}
