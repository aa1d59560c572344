package extract

import (
	"context"
	"mime"
	"net/url"
	"regexp"
	"strings"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

var (
	playerSetupRe = regexp.MustCompile(`(?:file|src|source)\s*:\s*["']([^"']+\.(?:m3u8|mp4|webm|mpd)[^"']*)["']`)
	jsonKeysRe    = regexp.MustCompile(`["'](?:file|url)["']\s*:\s*["']([^"']+)["']`)
	absURLRe      = regexp.MustCompile(`https?://[^\s"'<>\\]+`)
	streamWordRe  = regexp.MustCompile(`(?i)video|stream|play|source`)
)

func genericAdapter() *Adapter {
	return &Adapter{
		Kind:    media.Generic,
		Referer: true,
		Methods: []Method{
			{Name: "media_url", Run: mediaURL},
			{Name: "direct_link", Run: directLink},
			{Name: "video_source", Run: videoSource},
			{Name: "player_setup", Run: playerSetup},
			{Name: "json_keys", Run: jsonKeys},
			{Name: "url_heuristic", Run: urlHeuristic},
		},
	}
}

// mediaURL takes the first absolute URL on the page whose path ends in a
// media extension.
func mediaURL(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	text = strings.ReplaceAll(text, `\/`, "/")

	var raws []string
	for _, raw := range absURLRe.FindAllString(text, -1) {
		if isMediaURL(UnescapeJS(strings.TrimRight(raw, ".,;)"))) {
			raws = append(raws, strings.TrimRight(raw, ".,;)"))
		}
	}
	return firstValid(s, raws)
}

func isMediaURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Host != "" && httputil.IsDirectMedia(u)
}

// directLink accepts the source when the server answers with media
// (after redirects) or the page advertises an og:video URL.
func directLink(ctx context.Context, s *Session) (string, error) {
	resp, err := s.Page(ctx)
	if err != nil {
		return "", err
	}
	if final, err := url.Parse(resp.URL); err == nil && final.Host != "" && httputil.IsDirectMedia(final) {
		return resp.URL, nil
	}
	if isMediaType(resp.Header.Get("Content-Type")) {
		if resp.URL != "" {
			return resp.URL, nil
		}
		return s.Source.String(), nil
	}

	doc, err := s.Document(ctx)
	if err != nil {
		return "", err
	}
	for _, sel := range []string{
		`meta[property="og:video:secure_url"]`,
		`meta[property="og:video:url"]`,
		`meta[property="og:video"]`,
	} {
		if v, ok := doc.Find(sel).Attr("content"); ok && strings.TrimSpace(v) != "" {
			return s.Absolute(v), nil
		}
	}
	return "", ErrNoMatch
}

func isMediaType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "video/") ||
		mt == "application/vnd.apple.mpegurl" ||
		mt == "application/x-mpegurl" ||
		mt == "application/dash+xml"
}

// playerSetup finds file/src keys pointing at media in player setup scripts.
func playerSetup(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	return firstValid(s, allSubmatches(playerSetupRe, text))
}

// jsonKeys looks for "url" or "file" keys in embedded JSON whose value
// ends in a media extension.
func jsonKeys(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	var raws []string
	for _, raw := range allSubmatches(jsonKeysRe, text) {
		if isMediaURL(s.Absolute(UnescapeJS(raw))) {
			raws = append(raws, raw)
		}
	}
	return firstValid(s, raws)
}

// urlHeuristic takes any absolute URL on the page that looks like a
// stream, preferring ones with a media extension.
func urlHeuristic(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	text = strings.ReplaceAll(text, `\/`, "/")
	self := s.Source.String()

	var fallback string
	for _, raw := range absURLRe.FindAllString(text, -1) {
		c := UnescapeJS(strings.TrimRight(raw, ".,;)"))
		if c == self || !streamWordRe.MatchString(c) {
			continue
		}
		if _, err := httputil.ValidateCandidate(c); err != nil {
			continue
		}
		if isMediaURL(c) {
			return c, nil
		}
		if fallback == "" {
			fallback = c
		}
	}
	if fallback == "" {
		return "", ErrNoMatch
	}
	return fallback, nil
}
