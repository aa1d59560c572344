package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/tidwall/gjson"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

const (
	vkAPIURL            = "https://api.vk.com/method/video.get"
	DefaultVKAPIVersion = "5.131"
)

// vkVideoRe matches video{oid}_{id} in paths and in z= style query values.
var vkVideoRe = regexp.MustCompile(`video(-?\d+)_(\d+)`)

// vkFileOrder is the preference order for entries of the files object.
var vkFileOrder = []string{"mp4_1080", "mp4_720", "mp4_480", "mp4_360", "mp4_240", "hls"}

func vkAdapter() *Adapter {
	return &Adapter{
		Kind:  media.VK,
		Hosts: []string{"vk.com", "vkvideo.ru"},
		Methods: []Method{
			{Name: "vk_api", Run: vkAPI},
		},
	}
}

// vkVideoID extracts owner and video ids from the source URL.
func vkVideoID(u *url.URL) (string, string, bool) {
	q := u.Query()
	if oid, id := q.Get("oid"), q.Get("id"); oid != "" && id != "" {
		if httputil.ValidateNumericID(oid) == nil && httputil.ValidateNumericID(id) == nil {
			return oid, id, true
		}
	}
	for _, s := range []string{u.Path, q.Get("z"), u.Fragment} {
		if m := vkVideoRe.FindStringSubmatch(s); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

// vkAPI asks the VK API for the video's files. It needs an access token.
func vkAPI(ctx context.Context, s *Session) (string, error) {
	if s.Settings.VKToken == "" {
		return "", ErrSkipped
	}
	oid, id, ok := vkVideoID(s.Source)
	if !ok {
		return "", ErrNoMatch
	}
	version := s.Settings.VKAPIVersion
	if version == "" {
		version = DefaultVKAPIVersion
	}

	params := url.Values{}
	params.Set("videos", oid+"_"+id)
	params.Set("access_token", s.Settings.VKToken)
	params.Set("v", version)
	resp, err := s.Get(ctx, vkAPIURL+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	body := resp.Body
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("vk api: invalid JSON response")
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return "", fmt.Errorf("vk api error %d: %s", e.Get("error_code").Int(), e.Get("error_msg").String())
	}
	files := gjson.GetBytes(body, "response.items.0.files")
	if !files.Exists() {
		return "", ErrNoMatch
	}
	for _, key := range vkFileOrder {
		if v := files.Get(key).String(); v != "" {
			return v, nil
		}
	}
	return "", ErrNoMatch
}
