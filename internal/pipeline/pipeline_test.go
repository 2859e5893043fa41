// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/bodaay/rawfetch/internal/config"
	"github.com/bodaay/rawfetch/internal/relocate"
)

func TestRun_EndToEnd(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)

	err := os.WriteFile("config.toml", []byte(`
[raw]
path = "data/raw"

[[raw.files]]
name = "owner/dataset"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	download := t.TempDir()
	for _, name := range []string{"train.csv", "readme.md"} {
		if err := os.WriteFile(filepath.Join(download, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var asked string
	stub := FetcherFunc(func(ctx context.Context, dataset string) (string, error) {
		asked = dataset
		return download, nil
	})

	rep, err := Run(context.Background(), cfg, stub)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if asked != "owner/dataset" {
		t.Errorf("Expected fetch of owner/dataset, got %q", asked)
	}
	if _, err := os.Stat(filepath.Join(work, "data", "raw", "train.csv")); err != nil {
		t.Errorf("Expected data/raw/train.csv: %v", err)
	}
	if _, err := os.Stat(filepath.Join(work, "data", "raw", "readme.md")); !os.IsNotExist(err) {
		t.Errorf("Expected data/raw/readme.md to not exist, stat err = %v", err)
	}
	if len(rep.Moved) != 1 || rep.Moved[0] != "train.csv" {
		t.Errorf("Report.Moved = %v", rep.Moved)
	}
	if rep.Source != download || rep.Destination != "data/raw" {
		t.Errorf("Unexpected report %+v", rep)
	}
}

func TestRun_FetchErrorPropagatesUnchanged(t *testing.T) {
	cfg := config.Default()
	cfg.Raw.Path = filepath.Join(t.TempDir(), "out")

	boom := errors.New("hub unavailable")
	_, err := Run(context.Background(), cfg, FetcherFunc(func(context.Context, string) (string, error) {
		return "", boom
	}))
	if err != boom {
		t.Fatalf("Expected the fetch error itself, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Raw.Path); !os.IsNotExist(statErr) {
		t.Error("Expected no destination after a failed fetch")
	}
}

func TestRun_RelocationErrorWrapped(t *testing.T) {
	cfg := config.Default()
	cfg.Raw.Path = filepath.Join(t.TempDir(), "out")
	missing := filepath.Join(t.TempDir(), "gone")

	_, err := Run(context.Background(), cfg, FetcherFunc(func(context.Context, string) (string, error) {
		return missing, nil
	}))
	if !errors.Is(err, relocate.ErrSourceNotFound) {
		t.Fatalf("Expected ErrSourceNotFound, got %v", err)
	}
}

func TestHubFetcher_ForcesDownload(t *testing.T) {
	var downloads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/datasets/view/{owner}/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currentVersionNumber":1}`))
	})
	mux.HandleFunc("GET /api/v1/datasets/download/{owner}/{slug}", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		zw := zip.NewWriter(w)
		f, _ := zw.Create("train.csv")
		f.Write([]byte("a,b\n"))
		zw.Close()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Setenv("KAGGLE_USERNAME", "")
	t.Setenv("KAGGLE_KEY", "")
	t.Setenv("KAGGLE_CONFIG_DIR", t.TempDir())

	cfg := config.Default()
	cfg.Hub.Endpoint = srv.URL
	cfg.Hub.CacheDir = t.TempDir()
	cfg.Raw.Path = filepath.Join(t.TempDir(), "raw")

	fetcher := NewHubFetcher(cfg, nil)
	for i := 0; i < 2; i++ {
		if _, err := Run(context.Background(), cfg, fetcher); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}
	if got := downloads.Load(); got != 2 {
		t.Errorf("Expected a download per run, got %d", got)
	}
	if _, err := os.Stat(filepath.Join(cfg.Raw.Path, "train.csv")); err != nil {
		t.Errorf("Expected train.csv in destination: %v", err)
	}
}
