// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/bodaay/rawfetch/internal/config"
	"github.com/bodaay/rawfetch/pkg/kagglehub"
)

// BuildInfo holds version and build information.
type BuildInfo struct {
	Version   string
	GoVersion string
	OS        string
	Arch      string
	Commit    string
	BuildTime string
}

// GetBuildInfo returns the current build information.
func GetBuildInfo(version string) BuildInfo {
	info := BuildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	// Try to get VCS info from debug.BuildInfo
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if len(setting.Value) >= 7 {
					info.Commit = setting.Value[:7]
				} else {
					info.Commit = setting.Value
				}
			case "vcs.time":
				info.BuildTime = setting.Value
			}
		}
	}

	return info
}

func newVersionCmd(ro *RootOpts, version string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version, build information and the default run target",
		Run: func(cmd *cobra.Command, args []string) {
			info := GetBuildInfo(version)
			out := cmd.OutOrStdout()

			if short {
				fmt.Fprintln(out, info.Version)
				return
			}

			fmt.Fprintf(out, "rawfetch %s\n", info.Version)
			fmt.Fprintf(out, "  Go:       %s\n", info.GoVersion)
			fmt.Fprintf(out, "  OS/Arch:  %s/%s\n", info.OS, info.Arch)
			fmt.Fprintf(out, "  Commit:   %s\n", info.Commit)
			fmt.Fprintf(out, "  Built:    %s\n", info.BuildTime)

			// An unreadable config still prints the build details.
			var hub config.Hub
			fmt.Fprintf(out, "  Config:   %s", ro.Config)
			if cfg, err := config.Load(ro.Config); err == nil {
				hub = cfg.Hub
				fmt.Fprintf(out, " (dataset %s)\n", cfg.Dataset())
			} else {
				fmt.Fprintln(out, " (not loaded)")
			}
			fmt.Fprintf(out, "  Endpoint: %s\n", kagglehub.Endpoint(hub.Endpoint))
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}

