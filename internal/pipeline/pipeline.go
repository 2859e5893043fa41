// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs the fetch-and-relocate sequence once.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/bodaay/rawfetch/internal/config"
	"github.com/bodaay/rawfetch/internal/logging"
	"github.com/bodaay/rawfetch/internal/relocate"
	"github.com/bodaay/rawfetch/pkg/kagglehub"
)

// Fetcher downloads a dataset and returns the local directory holding it.
type Fetcher interface {
	Fetch(ctx context.Context, dataset string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, dataset string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, dataset string) (string, error) {
	return f(ctx, dataset)
}

// HubFetcher fetches datasets from the Kaggle hub, always bypassing the
// client cache.
type HubFetcher struct {
	Settings kagglehub.Settings
	Progress kagglehub.ProgressFunc
}

// NewHubFetcher builds a HubFetcher from the [hub] section of cfg.
func NewHubFetcher(cfg *config.Config, progress kagglehub.ProgressFunc) *HubFetcher {
	return &HubFetcher{
		Settings: kagglehub.Settings{
			Endpoint: cfg.Hub.Endpoint,
			CacheDir: cfg.Hub.CacheDir,
		},
		Progress: progress,
	}
}

// Fetch forces a fresh download and returns the path reported by the hub
// client. Client errors are returned unchanged.
func (f *HubFetcher) Fetch(ctx context.Context, dataset string) (string, error) {
	s := f.Settings
	s.ForceDownload = true
	return kagglehub.DatasetDownload(ctx, dataset, s, f.Progress)
}

// Report summarizes a completed run.
type Report struct {
	Dataset     string        `json:"dataset"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Moved       []string      `json:"moved"`
	Skipped     []string      `json:"skipped,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Run fetches the first configured dataset and relocates the matching
// files into cfg.Raw.Path.
func Run(ctx context.Context, cfg *config.Config, fetcher Fetcher) (*Report, error) {
	start := time.Now()
	name := cfg.Dataset()
	log := logging.WithFields(ctx, "dataset", name)

	log.Info("fetching dataset")
	src, err := fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	log.Debug("dataset fetched", "path", src)

	res, err := relocate.Move(src, cfg.Raw.Path, relocate.Options{
		Pattern:    cfg.Raw.Pattern,
		OnConflict: relocate.ConflictPolicy(cfg.Raw.OnConflict),
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("relocate %s: %w", name, err)
	}

	rep := &Report{
		Dataset:     name,
		Source:      src,
		Destination: cfg.Raw.Path,
		Moved:       res.Moved,
		Skipped:     res.Skipped,
		Elapsed:     time.Since(start),
	}
	log.Info("dataset relocated",
		"dest", rep.Destination,
		"moved", len(rep.Moved),
		"skipped", len(rep.Skipped),
		"elapsed", rep.Elapsed.Round(time.Millisecond),
	)
	return rep, nil
}
