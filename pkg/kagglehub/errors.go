// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"errors"
	"fmt"
)

// Common errors returned by the library.
var (
	// ErrInvalidHandle is returned when a handle is not "owner/dataset" or
	// "owner/dataset/versions/N".
	ErrInvalidHandle = errors.New("invalid dataset handle: expected owner/dataset[/versions/N]")

	// ErrUnauthorized is returned when the hub rejects the credentials.
	ErrUnauthorized = errors.New("unauthorized: this dataset requires valid Kaggle credentials")

	// ErrNotFound is returned when the dataset or version does not exist.
	ErrNotFound = errors.New("dataset or version not found")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limited: too many requests")

	// ErrUnsafeArchivePath is returned when an archive entry would be
	// written outside the extraction directory.
	ErrUnsafeArchivePath = errors.New("archive entry escapes destination")
)

// APIError represents an error response from the Kaggle API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Status)
}

// Is implements errors.Is for common error comparisons.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401, 403:
		return target == ErrUnauthorized
	case 404:
		return target == ErrNotFound
	case 429:
		return target == ErrRateLimited
	default:
		return false
	}
}
