package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"vidresolve/internal/player"
	"vidresolve/internal/resolve"
	"vidresolve/internal/ui"
)

// maxParallel bounds concurrent resolutions for multi-URL invocations.
const maxParallel = 4

// errUnresolved makes the process exit non-zero without cobra printing twice.
var errUnresolved = errors.New("one or more sources could not be resolved")

// sourceResult pairs a source with its outcome for JSON output.
type sourceResult struct {
	Source string `json:"source"`
	*resolve.Result
}

// resolveRun is the default command: vidresolve <url...>
func resolveRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		var err error
		args, err = readSources(os.Stdin)
		if err != nil {
			return err
		}
	}
	if len(args) == 0 {
		return cmd.Help()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r, store, err := newResolver(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	opts := options()
	results := make([]*resolve.Result, len(args))
	work := func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxParallel)
		for i, src := range args {
			g.Go(func() error {
				// Unresolved results are reported, not propagated.
				res, rerr := r.Resolve(gctx, src, opts)
				if rerr != nil {
					log.Debug("resolve failed", zap.Int("index", i), zap.Error(rerr))
				}
				results[i] = res
				return nil
			})
		}
		return g.Wait()
	}

	interactive := !flagJSON && term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		label := fmt.Sprintf("Resolving %d source(s)...", len(args))
		err = ui.Spin(ctx, os.Stdin, os.Stderr, label, work)
	} else {
		err = work(ctx)
	}
	if err != nil {
		return err
	}

	if err := printResults(os.Stdout, args, results); err != nil {
		return err
	}
	if flagPlay {
		if err := play(ctx, args, results, opts); err != nil {
			return err
		}
	}
	for _, res := range results {
		if !res.Playable() {
			return errUnresolved
		}
	}
	return nil
}

// play opens the first playable result. Headers mirror what the resolver
// sent so CDNs that check them serve the stream.
func play(ctx context.Context, sources []string, results []*resolve.Result, opts resolve.Options) error {
	opts.Ensure()
	p, err := player.New(cfg.Player)
	if err != nil {
		return err
	}
	for i, res := range results {
		if !res.Playable() {
			continue
		}
		s := player.Stream{URL: res.URL, Title: sources[i], UserAgent: opts.UserAgent}
		if res.URL != sources[i] {
			s.Referer = sources[i]
		}
		log.Debug("starting player", zap.String("player", p.Name()))
		return player.Play(ctx, p, s)
	}
	return nil
}

func printResults(w io.Writer, sources []string, results []*resolve.Result) error {
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(sourceResult{Source: sources[0], Result: results[0]})
		}
		out := make([]sourceResult, len(results))
		for i, res := range results {
			out[i] = sourceResult{Source: sources[i], Result: res}
		}
		return enc.Encode(out)
	}

	// Plain URLs when piped so the output can feed a player directly.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		for _, res := range results {
			if res.Playable() {
				fmt.Fprintln(w, res.URL)
			}
		}
		return nil
	}
	for i, res := range results {
		fmt.Fprint(w, ui.Result(sources[i], res))
	}
	return nil
}

// readSources reads one URL per line from in when it is not a terminal.
func readSources(in *os.File) ([]string, error) {
	if term.IsTerminal(int(in.Fd())) {
		return nil, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out, nil
}
