package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/peek-app/peek-sync/internal/profile"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileCreateCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

type profileJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	IsDefault   bool   `json:"is_default"`
	SyncEnabled bool   `json:"sync_enabled"`
	LastUsedAt  string `json:"last_used_at"`
}

func toProfileJSON(p *profile.Profile) profileJSON {
	return profileJSON{
		ID: p.ID, Name: p.Name, Slug: p.Slug,
		IsDefault: p.IsDefault, SyncEnabled: p.SyncEnabled,
		LastUsedAt: formatTime(p.LastUsedAt),
	}
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			profiles, err := mgr.Store().List(cmd.Context())
			if err != nil {
				return err
			}

			if flagJSON {
				out := make([]profileJSON, len(profiles))
				for i, p := range profiles {
					out[i] = toProfileJSON(p)
				}
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			headers := []string{"SLUG", "NAME", "DEFAULT", "SYNC", "LAST USED"}
			rows := make([][]string, len(profiles))
			for i, p := range profiles {
				rows[i] = []string{
					p.Slug, p.Name, boolMark(p.IsDefault), boolMark(p.SyncEnabled),
					formatTime(p.LastUsedAt),
				}
			}
			printTable(os.Stdout, headers, rows)

			return nil
		},
	}
}

func boolMark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var slugSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

func slugify(name string) string {
	s := slugSanitizer.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

func newProfileCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			name := args[0]
			slug := slugify(name)
			if slug == "" {
				return fmt.Errorf("profile name %q does not yield a usable slug", name)
			}

			now := time.Now().UnixMilli()
			p := &profile.Profile{
				ID: uuid.NewString(), Name: name, Slug: slug,
				CreatedAt: now, LastUsedAt: now,
			}
			if err := mgr.Store().Insert(cmd.Context(), p); err != nil {
				return err
			}

			statusf("Created profile %q (slug %q)\n", name, slug)
			return nil
		},
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <slug>",
		Short: "Set the active profile (takes effect on next launch)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			p, err := mgr.Store().GetBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			lock, err := profile.Acquire(dataDir(), p.Slug)
			if err != nil {
				return err
			}
			defer lock.Release()

			if err := mgr.Activate(cmd.Context(), p.ID); err != nil {
				return err
			}

			statusf("Active profile set to %q\n", p.Slug)
			return nil
		},
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a profile's row (on-disk data is preserved)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			mgr, err := openManager(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			p, err := mgr.Store().GetBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			lock, err := profile.Acquire(dataDir(), p.Slug)
			if err != nil {
				return fmt.Errorf("profile %q is in use by another running instance: %w", p.Slug, err)
			}
			defer lock.Release()

			if err := mgr.Delete(cmd.Context(), p.ID); err != nil {
				return err
			}

			statusf("Deleted profile %q\n", p.Slug)
			return nil
		},
	}
}
