package player

// Generic implements the Player interface for players like iina and celluloid
// that accept mpv-compatible arguments.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Args(s Stream) []string {
	args := []string{s.URL}
	if s.Title != "" {
		args = append(args, "--force-media-title="+s.Title)
	}
	if s.UserAgent != "" {
		args = append(args, "--user-agent="+s.UserAgent)
	}
	if s.Referer != "" {
		args = append(args, "--referrer="+s.Referer)
	}
	return args
}
