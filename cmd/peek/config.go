package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peek-app/peek-sync/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())

			if flagJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(cc.Cfg)
			}

			return config.RenderEffective(cc.Cfg, os.Stdout)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.key> <value>",
		Short: "Set a config file key (e.g. sync.poll_interval 2m)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, key, ok := strings.Cut(args[0], ".")
			if !ok {
				return fmt.Errorf("key must be of the form section.key, got %q", args[0])
			}

			path := flagConfigPath
			if path == "" {
				path = config.DefaultConfigPath()
			}

			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := config.CreateDefaultConfig(path); err != nil {
					return err
				}
			}

			if err := config.SetKey(path, section, key, args[1]); err != nil {
				return err
			}

			statusf("Set %s.%s = %s\n", section, key, args[1])
			return nil
		},
	}
}
