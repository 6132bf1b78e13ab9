package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peek-app/peek-sync/internal/datastore"
	"github.com/peek-app/peek-sync/internal/store"
)

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage items (URLs, notes, tag sets, images)",
	}

	cmd.AddCommand(newItemAddCmd())
	cmd.AddCommand(newItemListCmd())
	cmd.AddCommand(newItemGetCmd())
	cmd.AddCommand(newItemUpdateCmd())
	cmd.AddCommand(newItemDeleteCmd())

	return cmd
}

type itemJSON struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Starred   bool     `json:"starred"`
	Archived  bool     `json:"archived"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toItemJSON(it *store.Item, tags []string) itemJSON {
	return itemJSON{
		ID: it.ID, Type: it.Type, Content: it.Content, Tags: tags,
		Starred: it.Starred, Archived: it.Archived,
		CreatedAt: formatTime(it.CreatedAt), UpdatedAt: formatTime(it.UpdatedAt),
	}
}

func newItemAddCmd() *cobra.Command {
	var (
		content  string
		metadata string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Add a new item (type is one of: url, text, tagset, image)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			result := ds.AddItem(cmd.Context(), args[0], datastore.AddItemOpts{
				Content: content, Metadata: metadata,
			})
			if !result.Success {
				return result.Err
			}

			if len(tags) > 0 {
				if tagResult := ds.ReplaceItemTagSet(cmd.Context(), result.Data, tags); !tagResult.Success {
					return tagResult.Err
				}
			}

			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{"id": result.Data})
			}

			fmt.Println(result.Data)
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "item content")
	cmd.Flags().StringVar(&metadata, "metadata", "", "item metadata as a JSON object")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach (repeatable)")

	return cmd
}

func newItemListCmd() *cobra.Command {
	var (
		itemType string
		tagID    string
		limit    int
		since    int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			result := ds.QueryItems(cmd.Context(), store.ItemFilter{
				Type: itemType, Tag: tagID, Limit: limit, Since: since,
				SortBy: store.SortByUpdated,
			})
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

			if !isTTY() {
				for _, it := range result.Data {
					fmt.Println(it.ID)
				}
				return nil
			}

			headers := []string{"ID", "TYPE", "CONTENT", "TAGS", "UPDATED"}
			rows := make([][]string, len(result.Data))
			for i, it := range result.Data {
				tags := tagNamesCtx(cmd, ds, it.ID)
				rows[i] = []string{it.ID, it.Type, truncate(it.Content, 60), joinComma(tags), formatTime(it.UpdatedAt)}
			}
			printTable(os.Stdout, headers, rows)

			return nil
		},
	}

	cmd.Flags().StringVar(&itemType, "type", "", "filter by item type")
	cmd.Flags().StringVar(&tagID, "tag-id", "", "filter by tag id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to return (0 = no limit)")
	cmd.Flags().Int64Var(&since, "since", 0, "only items updated after this Unix-ms timestamp")

	return cmd
}

func tagNamesCtx(cmd *cobra.Command, ds *datastore.Service, itemID string) []string {
	result := ds.GetItemTags(cmd.Context(), itemID)
	if !result.Success {
		return []string{}
	}
	names := make([]string, len(result.Data))
	for i, t := range result.Data {
		names[i] = t.Name
	}
	return names
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func newItemGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			result := ds.GetItem(cmd.Context(), args[0])
			if !result.Success {
				return result.Err
			}

			tags := tagNamesCtx(cmd, ds, args[0])

			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(toItemJSON(result.Data, tags))
			}

			it := result.Data
			fmt.Printf("id:        %s\n", it.ID)
			fmt.Printf("type:      %s\n", it.Type)
			fmt.Printf("content:   %s\n", it.Content)
			fmt.Printf("tags:      %s\n", joinComma(tags))
			fmt.Printf("starred:   %v\n", it.Starred)
			fmt.Printf("archived:  %v\n", it.Archived)
			fmt.Printf("created:   %s\n", formatTime(it.CreatedAt))
			fmt.Printf("updated:   %s\n", formatTime(it.UpdatedAt))

			return nil
		},
	}
}

func newItemUpdateCmd() *cobra.Command {
	var (
		content  string
		starred  bool
		archived bool
		setStar  bool
		setArch  bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			fields := datastore.UpdateItemFields{}
			if cmd.Flags().Changed("content") {
				fields.Content = &content
			}
			if setStar {
				fields.Starred = &starred
			}
			if setArch {
				fields.Archived = &archived
			}

			result := ds.UpdateItem(cmd.Context(), args[0], fields)
			if !result.Success {
				return result.Err
			}

			statusf("Updated %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().BoolVar(&starred, "starred", false, "set starred")
	cmd.Flags().BoolVar(&archived, "archived", false, "set archived")
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		setStar = cmd.Flags().Changed("starred")
		setArch = cmd.Flags().Changed("archived")
	}

	return cmd
}

func newItemDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := mustCLIContext(cmd.Context())

			ds, _, closer, err := openProfileDatastore(cmd.Context(), cc.Logger)
			if err != nil {
				return err
			}
			defer closer()

			result := ds.DeleteItem(cmd.Context(), args[0])
			if !result.Success {
				return result.Err
			}

			statusf("Deleted %s\n", args[0])
			return nil
		},
	}
}
