package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/peek-app/peek-sync/internal/store"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	cmd.AddCommand(newTagListCmd())
	cmd.AddCommand(newTagSetCmd())
	cmd.AddCommand(newTagItemsCmd())

	return cmd
}

type tagJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Frequency int64   `json:"frequency"`
	Frecency  float64 `json:"frecency_score"`
}

func toTagJSON(t *store.Tag) tagJSON {
	return tagJSON{ID: t.ID, Name: t.Name, Frequency: t.Frequency, Frecency: t.FrecencyScore}
}

func newTagListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags, ordered by frecency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			result := ds.GetTagsByFrecency(cmd.Context())
			if !result.Success {
				return result.Err
			}

			if flagJSON {
				out := make([]tagJSON, len(result.Data))
				for i, t := range result.Data {
					out[i] = toTagJSON(t)
				}
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			headers := []string{"NAME", "FREQUENCY", "FRECENCY", "LAST USED"}
			rows := make([][]string, len(result.Data))
			for i, t := range result.Data {
				rows[i] = []string{
					t.Name,
					strconv.FormatInt(t.Frequency, 10),
					strconv.FormatFloat(t.FrecencyScore, 'f', 2, 64),
					formatTime(t.LastUsedAt),
				}
			}
			printTable(os.Stdout, headers, rows)

			return nil
		},
	}
}

// newTagSetCmd replaces an item's full tag set in one call (spec's
// "tagset" operation) rather than offering separate add/remove verbs —
// ReplaceItemTagSet is already idempotent and handles creation of
// previously-unseen tag names.
func newTagSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <item-id> <tag>...",
		Short: "Replace an item's tag set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			result := ds.ReplaceItemTagSet(cmd.Context(), args[0], args[1:])
			if !result.Success {
				return result.Err
			}

			statusf("Tags updated for %s\n", args[0])
			return nil
		},
	}
}

func newTagItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items <tag-id>",
		Short: "List items carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			result := ds.GetItemsByTag(cmd.Context(), args[0])
			if !result.Success {
				return result.Err
			}

			if flagJSON {
				out := make([]itemJSON, len(result.Data))
				for i, it := range result.Data {
					out[i] = toItemJSON(it, tagNamesCtx(cmd, ds, it.ID))
				}
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			headers := []string{"ID", "TYPE", "CONTENT", "UPDATED"}
			rows := make([][]string, len(result.Data))
			for i, it := range result.Data {
				rows[i] = []string{it.ID, it.Type, truncate(it.Content, 60), formatTime(it.UpdatedAt)}
			}
			printTable(os.Stdout, headers, rows)

			return nil
		},
	}
}
