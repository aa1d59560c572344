// Package player hands a resolved stream to an external media player.
// Players are launched with exec.CommandContext and explicit argument
// slices; nothing passes through a shell.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Stream is what a player needs to open a resolved source.
type Stream struct {
	URL       string
	Title     string
	Referer   string // page the stream was resolved from; some CDNs check it
	UserAgent string
}

// Player is the interface for media player implementations.
type Player interface {
	// Name returns the player binary name.
	Name() string

	// Args builds the command line for s.
	Args(s Stream) []string
}

// ErrNotFound is returned when the player binary is not in PATH.
var ErrNotFound = errors.New("player not found in PATH")

// New creates a player by name.
func New(name string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mpv":
		return &MPV{}, nil
	case "vlc":
		return &VLC{}, nil
	case "iina", "celluloid":
		return &Generic{name: strings.ToLower(name)}, nil
	default:
		return nil, fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", name)
	}
}

// Available checks if the player binary exists in PATH.
func Available(p Player) bool {
	_, err := exec.LookPath(p.Name())
	return err == nil
}

// Play runs p until it exits or ctx is cancelled. Players exit non-zero
// when the user quits, so exit statuses are not reported as errors.
func Play(ctx context.Context, p Player, s Stream) error {
	if s.URL == "" {
		return errors.New("no stream URL")
	}
	bin, err := exec.LookPath(p.Name())
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name(), ErrNotFound)
	}

	cmd := exec.CommandContext(ctx, bin, p.Args(s)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("running %s: %w", p.Name(), err)
	}
	return nil
}
