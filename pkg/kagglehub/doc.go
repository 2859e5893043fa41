// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

/*
Package kagglehub provides a small Go client for downloading datasets from
the Kaggle dataset hub into a local cache.

# Quick Start

	path, err := kagglehub.DatasetDownload(ctx, "zynicide/wine-reviews", kagglehub.Settings{
		ForceDownload: true,
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("dataset files are in", path)

# Handles

A handle names a dataset as "owner/dataset". A specific version can be
pinned with "owner/dataset/versions/N"; otherwise the current version is
resolved through the hub API before downloading.

# Cache Layout

Downloads are materialized under the cache root as:

	<cache>/datasets/<owner>/<dataset>/versions/<N>/

A sibling "<N>.complete" marker records a finished download. Without
ForceDownload a marked version is returned immediately. ForceDownload
removes the cached version and fetches it again.

The cache root is Settings.CacheDir, then $KAGGLEHUB_CACHE, then
~/.cache/kagglehub.

# Authentication

Credentials are read from Settings, then KAGGLE_USERNAME/KAGGLE_KEY, then
kaggle.json in $KAGGLE_CONFIG_DIR or ~/.kaggle. Requests without
credentials are sent anonymously.

# Progress Events

The ProgressFunc callback receives:

  - resolve_start: Version resolution has begun
  - resolved: The dataset version is known
  - cache_hit: A completed cached copy was reused
  - file_start: The archive download has started
  - file_progress: Periodic progress update during download
  - file_done: The archive download is complete
  - extract_start: Archive extraction has begun
  - extract_file: A file was written from the archive
  - error: An error occurred
  - done: The dataset is ready on disk

# Error Handling

Hub failures are returned as *APIError, which matches ErrUnauthorized,
ErrNotFound and ErrRateLimited through errors.Is. Nothing is retried.
*/
package kagglehub
