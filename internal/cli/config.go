// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bodaay/rawfetch/internal/config"
)

func newConfigCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCmd(ro))
	cmd.AddCommand(newConfigShowCmd(ro))
	cmd.AddCommand(newConfigPathCmd(ro))

	return cmd
}

func newConfigInitCmd(ro *RootOpts) *cobra.Command {
	var (
		force   bool
		useYAML bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: `Creates a default configuration file at ./config.toml (or the path given
by --config). With --yaml and no --config, ./config.yaml is written instead.

Edit raw.path and the first [[raw.files]] name before running rawfetch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ro.Config
			if useYAML && !cmd.Flags().Changed("config") {
				path = strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
			}

			if err := config.Write(path, config.Default()); err != nil {
				return fmt.Errorf("could not write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created config file: %s\n", path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Edit this file to set:")
			fmt.Fprintln(out, "  - raw.path, the directory CSV files are moved into")
			fmt.Fprintln(out, "  - the first [[raw.files]] name, e.g. \"zynicide/wine-reviews\"")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config file")
	cmd.Flags().BoolVar(&useYAML, "yaml", false, "Create YAML config instead of TOML")

	return cmd
}

func newConfigShowCmd(ro *RootOpts) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (defaults applied)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(ro.Config)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", ro.Config)
			if asYAML {
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(cfg)
			}
			return toml.NewEncoder(out).Encode(cfg)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as YAML")

	return cmd
}

func newConfigPathCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(ro.Config)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			return nil
		},
	}
}
