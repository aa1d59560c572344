package player

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "mpv", false},
		{"mpv", "mpv", false},
		{"VLC", "vlc", false},
		{"iina", "iina", false},
		{"celluloid", "celluloid", false},
		{"quicktime", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && p.Name() != tt.want {
				t.Errorf("New(%q).Name() = %q, want %q", tt.name, p.Name(), tt.want)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	s := Stream{
		URL:       "https://cdn.example.com/v.m3u8",
		Title:     "clip",
		Referer:   "https://host.example/embed/1,2",
		UserAgent: "test-agent",
	}

	tests := []struct {
		player Player
		want   []string
	}{
		{&MPV{}, []string{
			s.URL, "--really-quiet", "--force-media-title=clip",
			"--user-agent=test-agent", "--referrer=https://host.example/embed/1%2C2",
		}},
		{&VLC{}, []string{
			s.URL, "--play-and-exit", "--meta-title", "clip",
			"--http-user-agent", "test-agent", "--http-referrer", s.Referer,
		}},
		{&Generic{name: "iina"}, []string{
			s.URL, "--force-media-title=clip", "--user-agent=test-agent", "--referrer=" + s.Referer,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.player.Name(), func(t *testing.T) {
			got := tt.player.Args(s)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArgsMinimal(t *testing.T) {
	got := (&MPV{}).Args(Stream{URL: "https://cdn.example.com/a.mp4"})
	want := []string{"https://cdn.example.com/a.mp4", "--really-quiet"}
	if !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestPlayErrors(t *testing.T) {
	if err := Play(context.Background(), &MPV{}, Stream{}); err == nil {
		t.Error("expected error for empty URL")
	}

	missing := &Generic{name: "vidresolve-no-such-player"}
	err := Play(context.Background(), missing, Stream{URL: "https://cdn.example.com/a.mp4"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Play() error = %v, want ErrNotFound", err)
	}
	if Available(missing) {
		t.Error("Available() = true for missing binary")
	}
}
