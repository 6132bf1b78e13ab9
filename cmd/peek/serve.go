package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peek-app/peek-sync/internal/config"
	"github.com/peek-app/peek-sync/internal/server"
)

// newServeCmd builds `peek serve`, the server-side datastore mirror (spec
// §4.6). It skips the normal profile-resolution config loading: serving
// reads config.ServerConfig and config.NetworkConfig directly and never
// opens a profile of its own.
func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the server-side datastore mirror",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger(nil)

			env := config.ReadEnvOverrides()
			path := configPath
			if path == "" {
				path = config.ResolveConfigPath(env, logger)
			}

			cfg, err := config.LoadOrDefault(path, logger)
			if err != nil {
				return err
			}

			logger = buildLogger(cfg)

			srvCfg, err := server.ConfigFromAppConfig(cfg)
			if err != nil {
				return err
			}

			srv := server.NewServer(srvCfg, logger)

			ctx := shutdownContext(cmd.Context(), logger)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")

	return cmd
}

// shutdownContext returns a context that cancels on the first SIGINT/SIGTERM,
// giving Server.Start time to drain in-flight requests, and force-exits on a
// second signal in case shutdown hangs.
func shutdownContext(parent context.Context, logger *slog.Logger) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("received signal, initiating graceful shutdown", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing exit", "signal", sig.String())
			os.Exit(1)
		case <-parent.Done():
			return
		}
	}()

	return ctx
}
