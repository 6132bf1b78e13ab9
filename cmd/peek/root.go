package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/peek-app/peek-sync/internal/config"
	"github.com/peek-app/peek-sync/internal/profile"
)

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagProfile    string
	flagDataDir    string
	flagJSON       bool
	flagVerbose    bool
	flagDebug      bool
	flagQuiet      bool
)

// skipConfigAnnotation marks commands that load their own configuration
// rather than going through the ambient peek.toml (currently only `serve`,
// which reads config.ServerConfig directly and never opens a profile).
const skipConfigAnnotation = "skipConfig"

// CLIContext bundles the resolved ambient config and logger, built once in
// PersistentPreRunE. Individual subcommands open whatever further resources
// they need (profile.Manager, a profile's datastore.Service) themselves,
// since which profile a command touches — or whether it needs one at all —
// varies per command.
type CLIContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

type cliContextKey struct{}

func cliContextFrom(ctx context.Context) *CLIContext {
	cc, _ := ctx.Value(cliContextKey{}).(*CLIContext)
	return cc
}

// mustCLIContext extracts the CLIContext or panics. Programmer error: every
// command reachable without skipConfigAnnotation is guaranteed one by
// PersistentPreRunE before RunE runs.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not found in context — command must not skip config loading")
	}
	return cc
}

// newRootCmd builds the fully-assembled root command with all subcommands
// registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "peek",
		Short:         "Peek tag-indexed personal datastore",
		Long:          "Peek stores URLs, notes, and tag sets in a local, tag-indexed datastore, with optional sync to a server.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "profile slug to operate on (default: the active profile)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding profiles.db and datastore files")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed output")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "debug", "quiet")

	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newItemCmd())
	cmd.AddCommand(newTagCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig resolves the ambient config file and stores it, alongside a
// configured logger, in the command's context.
func loadConfig(cmd *cobra.Command) error {
	logger := buildLogger(nil)

	env := config.ReadEnvOverrides()

	cfgPath := flagConfigPath
	if cfgPath == "" {
		cfgPath = config.ResolveConfigPath(env, logger)
	}

	cfg, err := config.LoadOrDefault(cfgPath, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	finalLogger := buildLogger(cfg)
	cc := &CLIContext{Cfg: cfg, Logger: finalLogger}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

// buildLogger creates an slog.Logger honoring config-file log level, with
// CLI flags (--verbose/--debug/--quiet) always taking precedence. Pass nil
// for the pre-config bootstrap logger.
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn

	if cfg != nil {
		switch cfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelInfo
	}
	if flagDebug {
		level = slog.LevelDebug
	}
	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// dataDir resolves the directory holding profiles.db: --data-dir flag, then
// PEEK_DATA_DIR, then the platform default.
func dataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	if env := config.ReadEnvOverrides(); env.DataDir != "" {
		return env.DataDir
	}
	return config.DefaultDataDir()
}

// openManager opens profile.Manager over the resolved data directory.
// Callers must Close it.
func openManager(ctx context.Context, logger *slog.Logger) (*profile.Manager, error) {
	return profile.Open(ctx, dataDir(), logger)
}

// devBuild reports whether this binary was built for development use.
// Overridden at build time via ldflags alongside version; "dev" is the
// fallback for `go run`.
var devBuild = version == "dev"

// resolveProfile resolves the profile a command should operate against —
// --profile flag, PEEK_PROFILE env var, else the manager's normal
// precedence chain (spec §4.4) — and takes its single-instance lock (spec
// §4.4/§5). The returned Lock must be Released by the caller once resolved
// without error; on error the Profile may still be set (so a caller that
// wants to Relay to the instance already holding the lock knows which
// socket to dial) but the Lock is always nil.
func resolveProfile(ctx context.Context, mgr *profile.Manager) (*profile.Profile, *profile.Lock, error) {
	env := config.ReadEnvOverrides()

	override := flagProfile
	if override == "" {
		override = env.Profile
	}

	p, err := mgr.Resolve(ctx, override, devBuild)
	if err != nil {
		return nil, nil, err
	}

	lock, err := profile.Acquire(dataDir(), p.Slug)
	if err != nil {
		return p, nil, err
	}

	return p, lock, nil
}
