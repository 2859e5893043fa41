// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package relocate moves selected files out of a downloaded dataset into
// the configured destination directory.
package relocate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// DefaultPattern is used when Options.Pattern is empty.
const DefaultPattern = "*.csv"

// ConflictPolicy decides what happens when a file with the same name
// already exists at the destination.
type ConflictPolicy string

const (
	// Overwrite replaces the existing file.
	Overwrite ConflictPolicy = "overwrite"
	// Skip leaves both files where they are.
	Skip ConflictPolicy = "skip"
	// Fail stops the relocation with a *ConflictError.
	Fail ConflictPolicy = "fail"
)

var (
	// ErrSourceNotFound is returned when the source directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrSourceNotDir is returned when the source path is not a directory.
	ErrSourceNotDir = errors.New("source path is not a directory")
)

// ConflictError reports a destination file that already exists under the
// Fail policy.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("destination file already exists: %s", e.Path)
}

// Options tune a relocation. The zero value moves *.csv and overwrites.
type Options struct {
	Pattern    string
	OnConflict ConflictPolicy
	Logger     *slog.Logger
}

// Result lists the file names handled by Move.
type Result struct {
	Moved   []string
	Skipped []string
}

// Move creates dest (with parents) if needed and moves every regular file
// directly inside src whose name matches the pattern into it, keeping the
// file name. Files moved before an error stay moved.
func Move(src, dest string, opts Options) (Result, error) {
	var res Result

	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return res, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	policy := opts.OnConflict
	if policy == "" {
		policy = Overwrite
	}
	switch policy {
	case Overwrite, Skip, Fail:
	default:
		return res, fmt.Errorf("unknown conflict policy %q", policy)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	fi, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("%w: %s", ErrSourceNotFound, src)
	}
	if err != nil {
		return res, err
	}
	if !fi.IsDir() {
		return res, fmt.Errorf("%w: %s", ErrSourceNotDir, src)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return res, fmt.Errorf("create destination: %w", err)
	}

	matches, err := matchFiles(src, pattern)
	if err != nil {
		return res, err
	}

	for _, name := range matches {
		from := filepath.Join(src, name)
		to := filepath.Join(dest, name)

		if _, err := os.Lstat(to); err == nil {
			switch policy {
			case Skip:
				log.Debug("destination exists, skipping", "file", name)
				res.Skipped = append(res.Skipped, name)
				continue
			case Fail:
				return res, &ConflictError{Path: to}
			}
		}

		if err := moveFile(from, to); err != nil {
			return res, fmt.Errorf("move %s: %w", name, err)
		}
		log.Debug("moved file", "file", name, "dest", dest)
		res.Moved = append(res.Moved, name)
	}
	return res, nil
}

// matchFiles returns the names of regular files directly inside dir that
// match pattern, in directory order.
func matchFiles(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// moveFile renames from to to, falling back to copy and delete when they
// live on different filesystems.
func moveFile(from, to string) error {
	err := os.Rename(from, to)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyAndRemove(from, to)
}

func copyAndRemove(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.CreateTemp(filepath.Dir(to), "."+filepath.Base(to)+"-*")
	if err != nil {
		return err
	}
	tmp := out.Name()
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Chmod(fi.Mode().Perm()); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, to); err != nil {
		os.Remove(tmp)
		return err
	}
	// The copy is complete; a lost mtime does not fail the move.
	_ = os.Chtimes(to, fi.ModTime(), fi.ModTime())

	in.Close()
	return os.Remove(from)
}
