// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// cacheRoot returns the directory all datasets are cached under.
func cacheRoot(cfg Settings) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	if dir := os.Getenv("KAGGLEHUB_CACHE"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", "kagglehub"), nil
}

// versionPath is where a given dataset version is materialized.
func versionPath(root string, h Handle, version int) string {
	return filepath.Join(root, "datasets", h.Owner, h.Dataset, "versions", strconv.Itoa(version))
}

// insideRoot reports whether dir is root itself or lies below it.
func insideRoot(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// markerPath records that versionPath holds a finished download.
func markerPath(dir string) string {
	return dir + ".complete"
}

func isComplete(dir string) bool {
	if _, err := os.Stat(markerPath(dir)); err != nil {
		return false
	}
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}

func markComplete(dir string) error {
	return os.WriteFile(markerPath(dir), nil, 0o644)
}

// clearVersion removes a cached version, its marker and any leftover
// archive from an interrupted run.
func clearVersion(dir string) error {
	for _, p := range []string{markerPath(dir), archivePath(dir), archivePath(dir) + ".part"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.RemoveAll(dir)
}

func archivePath(dir string) string {
	return dir + ".archive"
}
