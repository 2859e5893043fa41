// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"fmt"
	"time"
)

// Handle identifies a dataset on the hub.
//
// Example:
//
//	h, err := kagglehub.ParseHandle("zynicide/wine-reviews/versions/4")
//	// h.Owner == "zynicide", h.Dataset == "wine-reviews", h.Version == 4
type Handle struct {
	// Owner is the user or organization slug.
	Owner string

	// Dataset is the dataset slug.
	Dataset string

	// Version pins a dataset version. Zero means "current version",
	// resolved through the API before downloading.
	Version int
}

// String returns the handle in "owner/dataset[/versions/N]" form.
func (h Handle) String() string {
	if h.Version > 0 {
		return fmt.Sprintf("%s/%s/versions/%d", h.Owner, h.Dataset, h.Version)
	}
	return h.Owner + "/" + h.Dataset
}

// Settings configures the client.
//
// The zero value is usable: endpoint, cache root and credentials fall back
// to the environment (see package documentation).
type Settings struct {
	// Endpoint is the hub base URL. If empty, $KAGGLE_API_ENDPOINT or
	// DefaultEndpoint is used.
	Endpoint string

	// CacheDir is the cache root. If empty, $KAGGLEHUB_CACHE or
	// ~/.cache/kagglehub is used.
	CacheDir string

	// Username and Key are the Kaggle API credentials. When both are empty
	// they are read from the environment or kaggle.json.
	Username string
	Key      string

	// ForceDownload discards any cached copy of the requested version and
	// fetches it again.
	ForceDownload bool
}

// ProgressEvent represents a progress update during a download.
type ProgressEvent struct {
	// Time is when the event occurred (UTC).
	Time time.Time `json:"time"`

	// Level is the log level: "debug", "info", "warn", "error".
	// Empty defaults to "info".
	Level string `json:"level,omitempty"`

	// Event is the event type identifier.
	Event string `json:"event"`

	// Handle is the dataset being processed.
	Handle string `json:"handle,omitempty"`

	// Version is the resolved dataset version, once known.
	Version int `json:"version,omitempty"`

	// Path is the archive name or extracted file path.
	Path string `json:"path,omitempty"`

	// Total is the total expected size in bytes (0 when unknown).
	Total int64 `json:"total,omitempty"`

	// Downloaded is the cumulative bytes downloaded so far.
	Downloaded int64 `json:"downloaded,omitempty"`

	// Message contains additional context or error details.
	Message string `json:"message,omitempty"`
}

// ProgressFunc is a callback for receiving progress events.
// It is invoked synchronously from the downloading goroutine.
type ProgressFunc func(ProgressEvent)
