// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"vidresolve/internal/cache"
	"vidresolve/internal/config"
	"vidresolve/internal/extract"
	"vidresolve/internal/httputil"
	"vidresolve/internal/logger"
	"vidresolve/internal/resolve"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagJSON        bool
	flagPassthrough bool
	flagRace        bool
	flagNoGeneric   bool
	flagRetries     int
	flagBaseDelay   int
	flagTimeout     int
	flagUserAgent   string
	flagNoCache     bool
	flagDiagnostics bool
	flagDebug       bool
	flagConfig      string
	flagPlay        bool
	flagPlayer      string
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// log is built from cfg once it has been loaded.
var log = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "vidresolve [url...]",
	Short: "Resolve video embed pages to playable stream URLs",
	Long: `vidresolve turns embed and watch pages from video hosts such as CDA,
VK, Sibnet, Google Drive, Mega, Dailymotion and Luluvdo into direct media
URLs a player can open. Unknown hosts go through generic page heuristics.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(*cobra.Command, []string) { _ = log.Sync() },
	RunE:              resolveRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/vidresolve/config.toml)")
	pf.BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	pf.BoolVarP(&flagPassthrough, "passthrough", "p", false, "Return the source URL when resolution fails")
	pf.BoolVar(&flagRace, "race", false, "Run extraction methods concurrently")
	pf.BoolVar(&flagNoGeneric, "no-generic", false, "Fail on hosts without a dedicated adapter")
	pf.IntVarP(&flagRetries, "retries", "r", 0, "Total attempts per request")
	pf.IntVar(&flagBaseDelay, "base-delay", 0, "First backoff delay in milliseconds")
	pf.IntVarP(&flagTimeout, "timeout", "t", 0, "Per-attempt timeout in milliseconds")
	pf.StringVar(&flagUserAgent, "user-agent", "", "User-Agent sent to hosts")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
	pf.BoolVarP(&flagDiagnostics, "diagnostics", "v", false, "Include the winning method and tried methods")
	pf.BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.Flags().BoolVar(&flagPlay, "play", false, "Open the first playable result in a media player")
	rootCmd.Flags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")

	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		path, perr := config.ExpandPath(flagConfig)
		if perr != nil {
			return perr
		}
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagRetries != 0 {
		cfg.MaxRetries = flagRetries
	}
	if flagBaseDelay != 0 {
		cfg.BaseDelayMS = flagBaseDelay
		if cfg.MaxDelayMS < flagBaseDelay {
			cfg.MaxDelayMS = flagBaseDelay
		}
	}
	if flagTimeout != 0 {
		cfg.TimeoutMS = flagTimeout
	}
	if flagUserAgent != "" {
		cfg.UserAgent = flagUserAgent
	}
	if flagPassthrough {
		cfg.Passthrough = true
	}
	if flagRace {
		cfg.RaceMethods = true
	}
	if flagNoGeneric {
		cfg.GenericFallback = false
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logger.Parse(cfg.LogLevel)
	if err != nil {
		return err
	}
	log = logger.New(level, os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
	return nil
}

// options maps the merged configuration onto per-call resolve options.
func options() resolve.Options {
	return resolve.Options{
		MaxRetries:           cfg.MaxRetries,
		BaseDelay:            cfg.BaseDelay(),
		MaxDelay:             cfg.MaxDelay(),
		Timeout:              cfg.Timeout(),
		UserAgent:            cfg.UserAgent,
		PassthroughOnFailure: cfg.Passthrough,
		RaceMethods:          cfg.RaceMethods,
		DisableGeneric:       !cfg.GenericFallback,
		Diagnostics:          flagDiagnostics,
	}
}

// newResolver wires the fetcher, rate limiter, cache and host settings.
// The returned store is nil when caching is disabled; callers close it.
func newResolver(ctx context.Context) (*resolve.Resolver, cache.Store, error) {
	limiter := httputil.NewHostLimiter(cfg.RateLimit, 2)
	fetcher := httputil.NewHTTPFetcher(httputil.NewClient(cfg.Timeout()), limiter)

	opts := []resolve.Option{
		resolve.WithLogger(log),
		resolve.WithSettings(extract.Settings{
			VKToken:      cfg.VK.AccessToken,
			VKAPIVersion: cfg.VK.APIVersion,
		}),
	}

	var store cache.Store
	if cfg.Cache.Enabled {
		var sqlitePath string
		if strings.EqualFold(cfg.Cache.Backend, cache.BackendSQLite) {
			p, err := cfg.SQLitePath()
			if err != nil {
				return nil, nil, err
			}
			sqlitePath = p
		}
		s, err := cache.Open(ctx, cache.Options{
			Backend:    cfg.Cache.Backend,
			RedisAddr:  cfg.Cache.RedisAddr,
			SQLitePath: sqlitePath,
			Logger:     log,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache: %w", err)
		}
		store = s
		opts = append(opts, resolve.WithCache(store, cfg.CacheTTL()))
	}

	return resolve.New(fetcher, opts...), store, nil
}

func closeStore(s cache.Store) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		log.Warn("closing cache", zap.Error(err))
	}
}
