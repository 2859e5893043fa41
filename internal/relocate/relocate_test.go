// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package relocate

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestMove_SelectsPattern(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "data", "raw")
	touch(t, src, map[string]string{
		"a.csv":          "a",
		"b.csv":          "b",
		"c.txt":          "c",
		"upper.CSV":      "u",
		"sub/nested.csv": "n",
	})
	if err := os.Mkdir(filepath.Join(src, "dir.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Move(src, dest, Options{})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if got := listDir(t, dest); !equal(got, []string{"a.csv", "b.csv"}) {
		t.Errorf("dest = %v, want [a.csv b.csv]", got)
	}
	if got := listDir(t, src); !equal(got, []string{"c.txt", "dir.csv", "sub", "upper.CSV"}) {
		t.Errorf("src = %v, want [c.txt dir.csv sub upper.CSV]", got)
	}
	if readFile(t, filepath.Join(src, "c.txt")) != "c" {
		t.Error("c.txt was modified")
	}
	if readFile(t, filepath.Join(dest, "a.csv")) != "a" {
		t.Error("a.csv content changed during move")
	}
	sort.Strings(res.Moved)
	if !equal(res.Moved, []string{"a.csv", "b.csv"}) {
		t.Errorf("Moved = %v", res.Moved)
	}
}

func TestMove_IdempotentDestination(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	touch(t, src, map[string]string{"a.csv": "a"})

	if _, err := Move(src, dest, Options{}); err != nil {
		t.Fatalf("first Move failed: %v", err)
	}
	if _, err := Move(src, dest, Options{}); err != nil {
		t.Fatalf("second Move failed: %v", err)
	}
	if got := listDir(t, dest); !equal(got, []string{"a.csv"}) {
		t.Errorf("dest = %v, want [a.csv]", got)
	}
}

func TestMove_EmptySource(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "a", "b", "c")
	touch(t, src, map[string]string{"readme.md": "r"})

	res, err := Move(src, dest, Options{})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	fi, err := os.Stat(dest)
	if err != nil || !fi.IsDir() {
		t.Fatalf("Expected destination directory to be created: %v", err)
	}
	if len(res.Moved) != 0 || len(listDir(t, dest)) != 0 {
		t.Errorf("Expected nothing moved, got %v", res.Moved)
	}
}

func TestMove_SourceErrors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out")
		_, err := Move(filepath.Join(t.TempDir(), "missing"), dest, Options{})
		if !errors.Is(err, ErrSourceNotFound) {
			t.Fatalf("Expected ErrSourceNotFound, got %v", err)
		}
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Error("Expected no destination to be created for a missing source")
		}
	})

	t.Run("source is a file", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, map[string]string{"file.csv": "x"})
		_, err := Move(filepath.Join(dir, "file.csv"), t.TempDir(), Options{})
		if !errors.Is(err, ErrSourceNotDir) {
			t.Fatalf("Expected ErrSourceNotDir, got %v", err)
		}
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := Move(t.TempDir(), t.TempDir(), Options{Pattern: "["})
		if !errors.Is(err, filepath.ErrBadPattern) {
			t.Fatalf("Expected ErrBadPattern, got %v", err)
		}
	})
}

func TestMove_ConflictPolicies(t *testing.T) {
	setup := func(t *testing.T) (string, string) {
		src, dest := t.TempDir(), t.TempDir()
		touch(t, src, map[string]string{"a.csv": "new", "b.csv": "new"})
		touch(t, dest, map[string]string{"a.csv": "old"})
		return src, dest
	}

	t.Run("overwrite", func(t *testing.T) {
		src, dest := setup(t)
		res, err := Move(src, dest, Options{OnConflict: Overwrite})
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if got := readFile(t, filepath.Join(dest, "a.csv")); got != "new" {
			t.Errorf("a.csv = %q, want new", got)
		}
		if len(res.Moved) != 2 {
			t.Errorf("Moved = %v", res.Moved)
		}
	})

	t.Run("skip", func(t *testing.T) {
		src, dest := setup(t)
		res, err := Move(src, dest, Options{OnConflict: Skip})
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if got := readFile(t, filepath.Join(dest, "a.csv")); got != "old" {
			t.Errorf("a.csv = %q, want old", got)
		}
		if got := readFile(t, filepath.Join(src, "a.csv")); got != "new" {
			t.Errorf("source a.csv = %q, want new", got)
		}
		if !equal(res.Skipped, []string{"a.csv"}) || !equal(res.Moved, []string{"b.csv"}) {
			t.Errorf("Result = %+v", res)
		}
	})

	t.Run("fail", func(t *testing.T) {
		src, dest := setup(t)
		_, err := Move(src, dest, Options{OnConflict: Fail})
		var cerr *ConflictError
		if !errors.As(err, &cerr) {
			t.Fatalf("Expected *ConflictError, got %v", err)
		}
		if cerr.Path != filepath.Join(dest, "a.csv") {
			t.Errorf("ConflictError.Path = %s", cerr.Path)
		}
		if got := readFile(t, filepath.Join(dest, "a.csv")); got != "old" {
			t.Errorf("a.csv = %q, want old", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		src, dest := setup(t)
		if _, err := Move(src, dest, Options{OnConflict: "merge"}); err == nil {
			t.Fatal("Expected error for unknown policy")
		}
	})
}

func TestMove_CustomPattern(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	touch(t, src, map[string]string{"a.csv": "a", "b.parquet": "b"})

	if _, err := Move(src, dest, Options{Pattern: "*.parquet"}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got := listDir(t, dest); !equal(got, []string{"b.parquet"}) {
		t.Errorf("dest = %v, want [b.parquet]", got)
	}
}

func TestCopyAndRemove(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	touch(t, src, map[string]string{"a.csv": "payload"})
	from, to := filepath.Join(src, "a.csv"), filepath.Join(dest, "a.csv")

	if err := copyAndRemove(from, to); err != nil {
		t.Fatalf("copyAndRemove failed: %v", err)
	}
	if got := readFile(t, to); got != "payload" {
		t.Errorf("copied content = %q", got)
	}
	if _, err := os.Stat(from); !os.IsNotExist(err) {
		t.Errorf("Expected source removed, stat err = %v", err)
	}
	if got := listDir(t, dest); !equal(got, []string{"a.csv"}) {
		t.Errorf("dest = %v, want only a.csv (no temp leftovers)", got)
	}
}

func TestCopyAndRemove_KeepsUnrelatedFiles(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	touch(t, src, map[string]string{"a.csv": "payload"})
	touch(t, dest, map[string]string{"a.csv.part": "unrelated"})

	if err := copyAndRemove(filepath.Join(src, "a.csv"), filepath.Join(dest, "a.csv")); err != nil {
		t.Fatalf("copyAndRemove failed: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "a.csv.part")); got != "unrelated" {
		t.Errorf("a.csv.part = %q, want it untouched", got)
	}
	if got := listDir(t, dest); !equal(got, []string{"a.csv", "a.csv.part"}) {
		t.Errorf("dest = %v, want [a.csv a.csv.part]", got)
	}
}
