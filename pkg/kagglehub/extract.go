// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// extractZip unpacks the archive at src into dir. Entries that would land
// outside dir are rejected with ErrUnsafeArchivePath.
func extractZip(src, dir string, emit func(ProgressEvent)) error {
	zr, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		zr.Close()
		return fmt.Errorf("%w: %v", ErrUnsafeArchivePath, err)
	}
	if err != nil {
		return err
	}
	defer zr.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, f := range zr.File {
		name := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
		if name == "." || path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return fmt.Errorf("%w: %s", ErrUnsafeArchivePath, f.Name)
		}
		dst := filepath.Join(dir, filepath.FromSlash(name))

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, dst); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
		emit(ProgressEvent{Event: "extract_file", Path: name, Total: int64(f.UncompressedSize64)})
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// isZip reports whether the file at p starts with a zip local header.
func isZip(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()

	magic := make([]byte, 4)
	n, err := io.ReadFull(f, magic)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n == 4 && string(magic) == "PK\x03\x04", nil
}

// filenameFromDisposition extracts a safe base file name from a
// Content-Disposition header, or returns def.
func filenameFromDisposition(header, def string) string {
	if header == "" {
		return def
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return def
	}
	name := filepath.Base(filepath.FromSlash(params["filename"]))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return def
	}
	return name
}
