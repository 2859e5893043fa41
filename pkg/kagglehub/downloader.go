// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// progressReader wraps an io.Reader and emits progress events during reads.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	path       string
	emit       func(ProgressEvent)
	lastEmit   time.Time
	interval   time.Duration
}

func newProgressReader(r io.Reader, total int64, path string, emit func(ProgressEvent)) *progressReader {
	return &progressReader{
		reader:   r,
		total:    total,
		path:     path,
		emit:     emit,
		lastEmit: time.Now(),
		interval: 200 * time.Millisecond,
	}
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.downloaded += int64(n)
		if time.Since(pr.lastEmit) >= pr.interval || err == io.EOF {
			pr.emit(ProgressEvent{
				Event:      "file_progress",
				Path:       pr.path,
				Downloaded: pr.downloaded,
				Total:      pr.total,
			})
			pr.lastEmit = time.Now()
		}
	}
	return n, err
}

// DatasetDownload downloads a dataset version into the local cache and
// returns the directory holding its files.
//
// With cfg.ForceDownload the cached copy is discarded first, so the
// returned path always reflects content fetched by this call. Errors from
// the hub are returned as-is; nothing is retried.
func DatasetDownload(ctx context.Context, handle string, cfg Settings, progress ProgressFunc) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	h, err := ParseHandle(handle)
	if err != nil {
		return "", err
	}

	version := 0
	emit := func(ev ProgressEvent) {
		if progress == nil {
			return
		}
		if ev.Time.IsZero() {
			ev.Time = time.Now().UTC()
		}
		if ev.Handle == "" {
			ev.Handle = h.Owner + "/" + h.Dataset
		}
		if ev.Version == 0 {
			ev.Version = version
		}
		progress(ev)
	}

	path, err := download(ctx, h, cfg, emit, &version)
	if err != nil {
		emit(ProgressEvent{Level: "error", Event: "error", Message: err.Error()})
		return "", err
	}
	emit(ProgressEvent{Event: "done", Path: path, Message: "dataset ready"})
	return path, nil
}

func download(ctx context.Context, h Handle, cfg Settings, emit func(ProgressEvent), version *int) (string, error) {
	root, err := cacheRoot(cfg)
	if err != nil {
		return "", err
	}
	httpc := buildHTTPClient()
	creds := resolveCredentials(cfg)

	emit(ProgressEvent{Event: "resolve_start", Message: "resolving dataset version"})
	v, err := resolveVersion(ctx, httpc, creds, cfg.Endpoint, h)
	if err != nil {
		return "", err
	}
	*version = v
	emit(ProgressEvent{Event: "resolved", Message: fmt.Sprintf("version %d", v)})

	dir := versionPath(root, h, v)
	if !insideRoot(root, dir) {
		return "", fmt.Errorf("%w: %s resolves outside the cache", ErrInvalidHandle, h)
	}
	if cfg.ForceDownload {
		if err := clearVersion(dir); err != nil {
			return "", fmt.Errorf("clear cached version: %w", err)
		}
	} else if isComplete(dir) {
		emit(ProgressEvent{Event: "cache_hit", Path: dir, Message: "using cached copy"})
		return dir, nil
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", err
	}

	archive := archivePath(dir)
	name, err := fetchArchive(ctx, httpc, creds, downloadURL(cfg.Endpoint, h, v), archive, h.Dataset, emit)
	if err != nil {
		return "", err
	}
	defer os.Remove(archive)

	if err := storePayload(archive, dir, name, emit); err != nil {
		return "", err
	}
	if err := markComplete(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// fetchArchive streams the dataset payload to dst via a ".part" file and
// returns the file name the hub suggested for it.
func fetchArchive(ctx context.Context, httpc *http.Client, creds credentials, urlStr, dst, fallbackName string, emit func(ProgressEvent)) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", err
	}
	addAuth(req, creds)

	resp, err := httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"), fallbackName)
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	emit(ProgressEvent{Event: "file_start", Path: name, Total: total})

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	pr := newProgressReader(resp.Body, total, name, emit)
	if _, err := io.Copy(out, pr); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", err
	}

	emit(ProgressEvent{Event: "file_done", Path: name, Total: total, Downloaded: pr.downloaded})
	return name, nil
}

// storePayload turns a downloaded archive into the version directory:
// zip archives are extracted, anything else is kept as a single file.
func storePayload(archive, dir, name string, emit func(ProgressEvent)) error {
	zipped, err := isZip(archive)
	if err != nil {
		return err
	}
	if zipped {
		emit(ProgressEvent{Event: "extract_start", Path: name})
		return extractZip(archive, dir, emit)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(archive, filepath.Join(dir, name))
}
