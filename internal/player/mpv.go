package player

import "strings"

// MPV implements the Player interface for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

// Args passes headers through mpv's own options so that HLS segment
// requests carry them too.
func (m *MPV) Args(s Stream) []string {
	args := []string{s.URL, "--really-quiet"}
	if s.Title != "" {
		args = append(args, "--force-media-title="+s.Title)
	}
	if s.UserAgent != "" {
		args = append(args, "--user-agent="+s.UserAgent)
	}
	if s.Referer != "" {
		// mpv splits this list on commas
		args = append(args, "--referrer="+strings.ReplaceAll(s.Referer, ",", "%2C"))
	}
	return args
}
