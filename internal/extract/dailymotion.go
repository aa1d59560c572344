package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"vidresolve/internal/media"
)

const dailymotionMetadataURL = "https://www.dailymotion.com/player/metadata/video/"

var (
	dailymotionPathRe = regexp.MustCompile(`^/(?:embed/)?video/([a-zA-Z0-9]+)`)
	dailymotionIDRe   = regexp.MustCompile(`^[a-zA-Z0-9]+`)
)

func dailymotionAdapter() *Adapter {
	return &Adapter{
		Kind:  media.Dailymotion,
		Hosts: []string{"dailymotion.com", "dai.ly"},
		Methods: []Method{
			{Name: "dailymotion_metadata", Run: dailymotionMetadata},
		},
	}
}

func dailymotionVideoID(u *url.URL) (string, bool) {
	if v := u.Query().Get("video"); v != "" {
		if id := dailymotionIDRe.FindString(v); id != "" {
			return id, true
		}
	}
	if m := dailymotionPathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	if strings.Contains(strings.ToLower(u.Hostname()), "dai.ly") {
		if id := dailymotionIDRe.FindString(strings.TrimPrefix(u.Path, "/")); id != "" {
			return id, true
		}
	}
	return "", false
}

// dailymotionMetadata reads the player metadata and picks the highest
// numeric quality that has a URL, falling back to auto.
func dailymotionMetadata(ctx context.Context, s *Session) (string, error) {
	id, ok := dailymotionVideoID(s.Source)
	if !ok {
		return "", ErrNoMatch
	}
	resp, err := s.Get(ctx, dailymotionMetadataURL+id)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(resp.Body) {
		return "", fmt.Errorf("dailymotion: invalid metadata JSON")
	}
	if e := gjson.GetBytes(resp.Body, "error"); e.Exists() {
		return "", fmt.Errorf("dailymotion: %s", e.Get("title").String())
	}

	urls := map[string]string{}
	var keys []string
	gjson.GetBytes(resp.Body, "qualities").ForEach(func(k, v gjson.Result) bool {
		for _, entry := range v.Array() {
			if u := entry.Get("url").String(); u != "" {
				urls[k.String()] = u
				keys = append(keys, k.String())
				break
			}
		}
		return true
	})
	if best, ok := HighestNumericKey(keys); ok {
		return urls[best], nil
	}
	if u := urls["auto"]; u != "" {
		return u, nil
	}
	return "", ErrNoMatch
}
