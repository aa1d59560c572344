package extract

import (
	"context"
	"regexp"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

var (
	pixeldrainRe        = regexp.MustCompile(`https?://pixeldrain\.com/(?:u|api/file)/([A-Za-z0-9]+)`)
	lycroisPlayerConfRe = regexp.MustCompile(`playerConfig\s*=`)
)

func lycroisAdapter() *Adapter {
	return &Adapter{
		Kind:    media.Lycrois,
		Hosts:   []string{"lycrois", "lycoris"},
		Referer: true,
		Methods: []Method{
			{Name: "video_source", Run: videoSource},
			{Name: "pixeldrain", Run: lycroisPixeldrain},
			{Name: "player_config", Run: lycroisPlayerConfig},
		},
	}
}

// lycroisPixeldrain turns a pixeldrain share link on the page into its
// direct file endpoint.
func lycroisPixeldrain(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	id, ok := submatch(pixeldrainRe, UnescapeJS(text))
	if !ok {
		return "", ErrNoMatch
	}
	return httputil.BuildURL("https://pixeldrain.com", "api", "file", id), nil
}

func lycroisPlayerConfig(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	u, err := literalPath(text, lycroisPlayerConfRe, "url")
	if err != nil {
		return "", err
	}
	return s.Absolute(u), nil
}
