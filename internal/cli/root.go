// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bodaay/rawfetch/internal/config"
	"github.com/bodaay/rawfetch/internal/logging"
	"github.com/bodaay/rawfetch/internal/pipeline"
	"github.com/bodaay/rawfetch/internal/tui"
	"github.com/bodaay/rawfetch/pkg/kagglehub"
)

// RootOpts holds global CLI options.
type RootOpts struct {
	Config    string
	EnvFile   string
	JSONOut   bool
	Quiet     bool
	Verbose   bool
	LogFile   string
	LogLevel  string
	LogFormat string
}

// runOpts holds flags that override config.toml for a single run.
type runOpts struct {
	dryRun     bool
	cacheDir   string
	endpoint   string
	pattern    string
	onConflict string
}

// Execute runs the CLI with the given version string.
func Execute(version string) error {
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	root := newRootCmd(&RootOpts{}, version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func newRootCmd(ro *RootOpts, version string) *cobra.Command {
	opts := &runOpts{}

	root := &cobra.Command{
		Use:   "rawfetch",
		Short: "Download a Kaggle dataset and move its CSV files into the raw data directory",
		Long: `rawfetch reads config.toml, force-downloads the first dataset listed under
[[raw.files]] from the Kaggle hub and moves the files matching raw.pattern
(default *.csv) into raw.path.

Credentials come from KAGGLE_USERNAME/KAGGLE_KEY (a .env file is loaded
first) or ~/.kaggle/kaggle.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ro, opts)
		},
	}

	// Global flags
	root.PersistentFlags().StringVar(&ro.Config, "config", config.DefaultPath, "Path to config file (TOML, YAML or JSON)")
	root.PersistentFlags().StringVar(&ro.EnvFile, "env-file", ".env", "Load environment variables from this file if it exists")
	root.PersistentFlags().BoolVar(&ro.JSONOut, "json", false, "Emit machine-readable JSON events and results")
	root.PersistentFlags().BoolVarP(&ro.Quiet, "quiet", "q", false, "Quiet mode (minimal logs)")
	root.PersistentFlags().BoolVarP(&ro.Verbose, "verbose", "v", false, "Verbose logs (debug details)")
	root.PersistentFlags().StringVar(&ro.LogFile, "log-file", "", "Write logs to file (in addition to stderr)")
	root.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&ro.LogFormat, "log-format", "text", "Log format: text, json")

	// Run flags
	root.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Plan only: list the dataset files and exit")
	root.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Override the hub cache directory")
	root.Flags().StringVar(&opts.endpoint, "endpoint", "", "Override the Kaggle API endpoint")
	root.Flags().StringVar(&opts.pattern, "pattern", "", "Override raw.pattern")
	root.Flags().StringVar(&opts.onConflict, "on-conflict", "", "Override raw.on_conflict: overwrite|skip|fail")

	root.AddCommand(newVersionCmd(ro, version))
	root.AddCommand(newConfigCmd(ro))
	root.SetHelpCommand(&cobra.Command{Use: "help", Hidden: true})

	return root
}

func run(cmd *cobra.Command, ro *RootOpts, opts *runOpts) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := loadEnv(ro.EnvFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	interactive := !ro.JSONOut && !ro.Quiet && tui.IsInteractive()
	logger, closeLog, err := setupLogging(cmd, ro, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	runID := uuid.NewString()
	ctx = logging.WithLogger(ctx, logger.With("run_id", runID))

	cfg, err := config.Load(ro.Config)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg, opts); err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if opts.dryRun {
		plan, err := kagglehub.PlanDataset(ctx, cfg.Dataset(), pipeline.NewHubFetcher(cfg, nil).Settings)
		if err != nil {
			return err
		}
		return printPlan(out, ro.JSONOut, cfg, plan)
	}

	// Progress mode selection
	var progress kagglehub.ProgressFunc
	switch {
	case ro.JSONOut:
		progress = jsonProgress(out)
	case ro.Quiet:
	case interactive:
		ui := tui.NewLiveRenderer(cfg.Dataset())
		defer ui.Close()
		progress = ui.Handler()
	default:
		progress = cliProgress(out, cfg.Dataset())
	}

	rep, err := pipeline.Run(ctx, cfg, pipeline.NewHubFetcher(cfg, progress))
	if err != nil {
		return err
	}

	switch {
	case ro.JSONOut:
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		return enc.Encode(struct {
			Event string `json:"event"`
			*pipeline.Report
		}{"result", rep})
	case ro.Quiet:
		return nil
	default:
		fmt.Fprintf(out, "moved %d file(s) to %s", len(rep.Moved), rep.Destination)
		if len(rep.Skipped) > 0 {
			fmt.Fprintf(out, " (skipped %d existing)", len(rep.Skipped))
		}
		fmt.Fprintln(out)
		return nil
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}

// loadEnv loads a dotenv file without overriding variables that are
// already set. A missing file is only an error when it was asked for.
func loadEnv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}

// setupLogging wires slog to stderr and, optionally, a log file.
func setupLogging(cmd *cobra.Command, ro *RootOpts, interactive bool) (*slog.Logger, func(), error) {
	level := ro.LogLevel
	if !cmd.Flags().Changed("log-level") {
		switch {
		case ro.Verbose:
			level = "debug"
		case ro.Quiet, interactive:
			// keep the terminal for the progress display
			level = "warn"
		}
	}

	var w io.Writer = cmd.ErrOrStderr()
	closeFn := func() {}
	if ro.LogFile != "" {
		if dir := filepath.Dir(ro.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(ro.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closeFn = func() { f.Close() }
	}

	return logging.Setup(level, ro.LogFormat, w), closeFn, nil
}

// applyOverrides copies explicitly set flags over the loaded config and
// re-validates it.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts *runOpts) error {
	changed := false
	set := func(flagName string, dst *string, v string) {
		if cmd.Flags().Changed(flagName) {
			*dst = v
			changed = true
		}
	}
	set("cache-dir", &cfg.Hub.CacheDir, opts.cacheDir)
	set("endpoint", &cfg.Hub.Endpoint, opts.endpoint)
	set("pattern", &cfg.Raw.Pattern, opts.pattern)
	set("on-conflict", &cfg.Raw.OnConflict, strings.ToLower(opts.onConflict))

	if !changed {
		return nil
	}
	return cfg.Validate()
}

func printPlan(w io.Writer, jsonOut bool, cfg *config.Config, p *kagglehub.Plan) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	fmt.Fprintf(w, "Plan for %s version %d (%d files) -> %s:\n", p.Handle, p.Version, len(p.Items), cfg.Raw.Path)
	for _, it := range p.Items {
		mark := " "
		if ok, _ := filepath.Match(cfg.Raw.Pattern, filepath.Base(it.Name)); ok {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %s  %10d\n", mark, it.Name, it.Size)
	}
	fmt.Fprintf(w, "Files marked * match %q and will be moved.\n", cfg.Raw.Pattern)
	return nil
}

// cliProgress returns a simple text-based progress handler.
func cliProgress(w io.Writer, dataset string) kagglehub.ProgressFunc {
	return func(ev kagglehub.ProgressEvent) {
		switch ev.Event {
		case "resolve_start":
			fmt.Fprintf(w, "Resolving %s ...\n", dataset)
		case "resolved":
			fmt.Fprintf(w, "%s %s\n", dataset, ev.Message)
		case "cache_hit":
			fmt.Fprintf(w, "cached: %s\n", ev.Path)
		case "file_start":
			fmt.Fprintf(w, "downloading: %s (%d bytes)\n", ev.Path, ev.Total)
		case "file_done":
			fmt.Fprintf(w, "done: %s\n", ev.Path)
		case "extract_start":
			fmt.Fprintf(w, "extracting: %s\n", ev.Path)
		case "error":
			fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message)
		case "done":
			fmt.Fprintf(w, "%s: %s\n", ev.Message, ev.Path)
		}
	}
}

// jsonProgress returns a JSON-lines progress handler.
func jsonProgress(w io.Writer) kagglehub.ProgressFunc {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	var mu sync.Mutex
	return func(ev kagglehub.ProgressEvent) {
		mu.Lock()
		_ = enc.Encode(ev)
		mu.Unlock()
	}
}
