package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/peek-app/peek-sync/internal/profile"
	"github.com/peek-app/peek-sync/internal/syncengine"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the active profile with its server",
	}

	cmd.AddCommand(newSyncEnableCmd())
	cmd.AddCommand(newSyncDisableCmd())
	cmd.AddCommand(newSyncRunCmd())
	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncWatchCmd())

	return cmd
}

func newSyncEnableCmd() *cobra.Command {
	var apiKey, serverSlug string

	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable sync for the resolved profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			p, lock, err := resolveProfile(cmd.Context(), mgr)
			if err != nil {
				return err
			}
			defer lock.Release()

			if err := mgr.EnableSync(cmd.Context(), p.ID, apiKey, serverSlug); err != nil {
				return err
			}

			statusf("Sync enabled for %q\n", p.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Bearer apiKey issued by the sync server")
	cmd.Flags().StringVar(&serverSlug, "server-slug", "", "profile slug as known to the sync server")
	cmd.MarkFlagRequired("api-key")

	return cmd
}

func newSyncDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable sync for the resolved profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			p, lock, err := resolveProfile(cmd.Context(), mgr)
			if err != nil {
				return err
			}
			defer lock.Release()

			if err := mgr.DisableSync(cmd.Context(), p.ID); err != nil {
				return err
			}

			statusf("Sync disabled for %q\n", p.Slug)
			return nil
		},
	}
}

func newSyncRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one explicit sync pass (pull then push)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			p, lock, err := resolveProfile(cmd.Context(), mgr)
			if err != nil {
				return err
			}
			defer lock.Release()

			syncCfg, err := mgr.GetSyncConfig(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			if !syncCfg.Enabled {
				return fmt.Errorf("sync is not enabled for profile %q — run 'peek sync enable' first", p.Slug)
			}

			ds, dsCloser, err := openDatastoreForProfile(cmd.Context(), mgr, p, cc.Logger)
			if err != nil {
				return err
			}
			defer dsCloser()

			client, err := newWireClient(&cc.Cfg.Network, cc.Cfg.Sync.ServerURL, syncCfg.APIKey)
			if err != nil {
				return err
			}

			engine := syncengine.NewEngine(syncengine.EngineConfig{
				Client:      client,
				Datastore:   ds,
				ProfileID:   p.ID,
				ProfileSlug: syncCfg.ServerProfileSlug,
				Logger:      cc.Logger,
			})

			orch := syncengine.NewOrchestrator(engine, mgr, p.ID, cc.Logger)

			// explicit=true: a user-requested "sync now" always runs, even
			// if the profile was recently suppressed after repeated
			// background-ticker failures.
			report, err := orch.SyncAll(cmd.Context(), true)
			if err != nil {
				return err
			}

			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(report)
			}

			fmt.Printf("pulled=%d pushed=%d conflicts=%d failed=%d\n",
				report.Pulled, report.Pushed, report.Conflicts, report.Failed)

			return nil
		},
	}
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync configuration and pending-push count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			p, lock, err := resolveProfile(cmd.Context(), mgr)
			if err != nil {
				return err
			}
			defer lock.Release()

			syncCfg, err := mgr.GetSyncConfig(cmd.Context(), p.ID)
			if err != nil {
				return err
			}

			if !syncCfg.Enabled {
				if flagJSON {
					return json.NewEncoder(os.Stdout).Encode(syncengine.Status{Configured: false})
				}
				fmt.Println("sync not configured")
				return nil
			}

			ds, dsCloser, err := openDatastoreForProfile(cmd.Context(), mgr, p, cc.Logger)
			if err != nil {
				return err
			}
			defer dsCloser()

			client, err := newWireClient(&cc.Cfg.Network, cc.Cfg.Sync.ServerURL, syncCfg.APIKey)
			if err != nil {
				return err
			}

			engine := syncengine.NewEngine(syncengine.EngineConfig{
				Client:      client,
				Datastore:   ds,
				ProfileID:   p.ID,
				ProfileSlug: syncCfg.ServerProfileSlug,
				Logger:      cc.Logger,
			})

			orch := syncengine.NewOrchestrator(engine, mgr, p.ID, cc.Logger)

			status, err := orch.Status(cmd.Context())
			if err != nil {
				return err
			}

			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(status)
			}

			fmt.Printf("configured=%v pending=%d last_sync=%s\n",
				status.Configured, status.PendingCount, formatTime(syncCfg.LastSyncAt))

			return nil
		},
	}
}

// newSyncWatchCmd runs sync continuously: a poll ticker, wake requests
// relayed from a secondary launch, and an optional websocket push channel,
// all feeding the same Orchestrator so a wakeup from any source runs at
// most one syncAll at a time (spec §4.5, §5). The profile directory watch
// started alongside them only logs an externally changed active profile;
// it does not trigger a sync. Only one instance can watch a given profile; a
// second `peek sync watch` relays a wake request to the first instead of
// failing outright.
func newSyncWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run sync continuously until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			p, lock, err := resolveProfile(cmd.Context(), mgr)
			if err != nil {
				if p != nil {
					if relayErr := profile.Relay(dataDir(), p.Slug, "wake"); relayErr == nil {
						statusf("Another instance is already watching %q; requested an immediate sync from it\n", p.Slug)
						return nil
					}
				}
				return err
			}
			defer lock.Release()

			syncCfg, err := mgr.GetSyncConfig(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			if !syncCfg.Enabled {
				return fmt.Errorf("sync is not enabled for profile %q — run 'peek sync enable' first", p.Slug)
			}

			ds, dsCloser, err := openDatastoreForProfile(cmd.Context(), mgr, p, cc.Logger)
			if err != nil {
				return err
			}
			defer dsCloser()

			client, err := newWireClient(&cc.Cfg.Network, cc.Cfg.Sync.ServerURL, syncCfg.APIKey)
			if err != nil {
				return err
			}

			engine := syncengine.NewEngine(syncengine.EngineConfig{
				Client:      client,
				Datastore:   ds,
				ProfileID:   p.ID,
				ProfileSlug: syncCfg.ServerProfileSlug,
				Logger:      cc.Logger,
			})

			orch := syncengine.NewOrchestrator(engine, mgr, p.ID, cc.Logger)

			ctx := shutdownContext(cmd.Context(), cc.Logger)

			if err := mgr.Watch(ctx, p.Slug); err != nil {
				cc.Logger.Warn("profile directory watch failed to start", "error", err)
			}

			go lock.Accept(func(string) {
				statusf("Received wake request from a secondary launch\n")
				orch.Trigger(p.ID)
			})

			if cc.Cfg.Sync.Websocket {
				wsURL, err := notifyURL(cc.Cfg.Sync.ServerURL, syncCfg.ServerProfileSlug)
				if err != nil {
					cc.Logger.Warn("sync: websocket notifications disabled", "error", err)
				} else {
					go runNotifier(ctx, cc.Logger, wsURL, syncCfg.APIKey, p.ID, orch)
				}
			}

			pollInterval, err := time.ParseDuration(cc.Cfg.Sync.PollInterval)
			if err != nil {
				return fmt.Errorf("parsing sync.poll_interval: %w", err)
			}
			ticker := time.NewTicker(pollInterval)
			defer ticker.Stop()

			statusf("Watching profile %q (poll every %s)\n", p.Slug, pollInterval)

			for {
				select {
				case <-ctx.Done():
					statusf("Stopping\n")
					return nil
				case <-ticker.C:
					runSyncCycle(ctx, cc.Logger, orch)
				case <-orch.WakeChan():
					runSyncCycle(ctx, cc.Logger, orch)
				}
			}
		},
	}
}

// runSyncCycle runs one background syncAll and logs its outcome rather than
// exiting the daemon: a single cycle's failure shouldn't kill a long-running
// watch, only suppress further attempts via the Orchestrator's own
// FailureTracker.
func runSyncCycle(ctx context.Context, logger *slog.Logger, orch *syncengine.Orchestrator) {
	report, err := orch.SyncAll(ctx, false)
	if err != nil {
		logger.Warn("sync: cycle failed", "error", err)
		return
	}
	logger.Info("sync: cycle complete",
		"pulled", report.Pulled, "pushed", report.Pushed,
		"conflicts", report.Conflicts, "failed", report.Failed)
}

// runNotifier dials the server's websocket change feed and keeps it
// reconnecting (with backoff) for the life of ctx, triggering orch on every
// received change event. An additional wakeup source alongside the poll
// ticker, not a replacement for it — the ticker still catches changes made
// while the connection was down.
func runNotifier(ctx context.Context, logger *slog.Logger, wsURL, apiKey, profileID string, orch *syncengine.Orchestrator) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for ctx.Err() == nil {
		notifier := syncengine.NewNotifier(wsURL, apiKey, profileID, orch.Trigger, logger)
		if err := notifier.Listen(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("sync: websocket notifier disconnected, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		return
	}
}

// notifyURL derives the server's websocket change-feed URL from its HTTP(S)
// base URL.
func notifyURL(serverURL, slug string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parsing sync.server_url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("sync.server_url has unsupported scheme %q", u.Scheme)
	}

	u.Path = "/notify"
	q := u.Query()
	q.Set("slug", slug)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
