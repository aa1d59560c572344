package player

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Args(s Stream) []string {
	args := []string{s.URL, "--play-and-exit"}
	if s.Title != "" {
		args = append(args, "--meta-title", s.Title)
	}
	if s.UserAgent != "" {
		args = append(args, "--http-user-agent", s.UserAgent)
	}
	if s.Referer != "" {
		args = append(args, "--http-referrer", s.Referer)
	}
	return args
}
