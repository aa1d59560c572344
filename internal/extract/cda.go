package extract

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"vidresolve/internal/media"
)

var (
	cdaPlayerDataRe = regexp.MustCompile(`player_data\s*=\s*(?:'([^']*)'|"([^"]*)")`)
	cdaQualitiesRe  = regexp.MustCompile(`["']?qualities["']?\s*[:=]`)
	cdaMediaFilesRe = regexp.MustCompile(`mediaFiles\s*=`)
)

func cdaAdapter() *Adapter {
	return &Adapter{
		Kind:    media.CDA,
		Hosts:   []string{"cda.pl"},
		Referer: true,
		Methods: []Method{
			{Name: "player_data", Run: cdaPlayerData},
			{Name: "qualities", Run: cdaQualities},
			{Name: "video_source", Run: videoSource},
			{Name: "media_files", Run: cdaMediaFiles},
		},
	}
}

// cdaPlayerData reads video.file from the player_data attribute, which CDA
// ships either HTML-entity encoded or URL-encoded.
func cdaPlayerData(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	raw, ok := submatch(cdaPlayerDataRe, text)
	if !ok {
		return "", ErrNoMatch
	}
	data := html.UnescapeString(raw)
	if !strings.HasPrefix(strings.TrimSpace(data), "{") {
		if dec, err := url.QueryUnescape(data); err == nil {
			data = dec
		}
	}
	if !gjson.Valid(data) {
		return "", ErrNoMatch
	}
	file := gjson.Get(data, "video.file").String()
	if file == "" {
		return "", ErrNoMatch
	}
	return s.Absolute(UnescapeJS(file)), nil
}

// cdaQualities picks the highest quality from the qualities object literal.
func cdaQualities(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	lit, ok := Balanced(text, cdaQualitiesRe)
	if !ok {
		return "", ErrNoMatch
	}
	js := ObjectLiteralToJSON(lit)
	if !gjson.Valid(js) {
		return "", ErrNoMatch
	}
	values := map[string]string{}
	var keys []string
	gjson.Parse(js).ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String && v.String() != "" {
			keys = append(keys, k.String())
			values[k.String()] = v.String()
		}
		return true
	})
	best, ok := HighestNumericKey(keys)
	if !ok {
		return "", ErrNoMatch
	}
	return s.Absolute(UnescapeJS(values[best])), nil
}

func cdaMediaFiles(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	file, err := literalPath(text, cdaMediaFilesRe, "0.url")
	if err != nil {
		return "", err
	}
	return s.Absolute(file), nil
}
