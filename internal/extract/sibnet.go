package extract

import (
	"context"
	"net/url"
	"regexp"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

const sibnetBase = "https://video.sibnet.ru"

var (
	sibnetPathRe   = regexp.MustCompile(`/video(\d+)`)
	sibnetPlayerRe = regexp.MustCompile(`player\.src\(\s*\[\s*\{\s*src\s*:\s*["']([^"']+)["']`)
)

func sibnetAdapter() *Adapter {
	return &Adapter{
		Kind:    media.Sibnet,
		Hosts:   []string{"sibnet.ru"},
		Referer: true,
		Methods: []Method{
			{Name: "sibnet_player", Run: sibnetPlayer},
		},
	}
}

func sibnetVideoID(u *url.URL) (string, bool) {
	if id := u.Query().Get("videoid"); id != "" {
		return id, httputil.ValidateNumericID(id) == nil
	}
	if m := sibnetPathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	return "", false
}

// sibnetPlayer loads the shell player for the video and reads player.src.
func sibnetPlayer(ctx context.Context, s *Session) (string, error) {
	id, ok := sibnetVideoID(s.Source)
	if !ok {
		return "", ErrNoMatch
	}
	resp, err := s.Get(ctx, sibnetBase+"/shell.php?videoid="+id)
	if err != nil {
		return "", err
	}
	src, ok := submatch(sibnetPlayerRe, string(resp.Body))
	if !ok {
		return "", ErrNoMatch
	}
	base, _ := url.Parse(sibnetBase)
	return httputil.Absolute(base, src), nil
}
