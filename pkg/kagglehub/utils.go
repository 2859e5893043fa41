// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHandle parses "owner/dataset" or "owner/dataset/versions/N".
func ParseHandle(s string) (Handle, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
		}
	}

	switch len(parts) {
	case 2:
		return Handle{Owner: parts[0], Dataset: parts[1]}, nil
	case 4:
		if parts[2] != "versions" {
			return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
		}
		v, err := strconv.Atoi(parts[3])
		if err != nil || v <= 0 {
			return Handle{}, fmt.Errorf("%w: bad version in %q", ErrInvalidHandle, s)
		}
		return Handle{Owner: parts[0], Dataset: parts[1], Version: v}, nil
	default:
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
	}
}

// IsValidHandle reports whether s parses as a dataset handle.
func IsValidHandle(s string) bool {
	_, err := ParseHandle(s)
	return err == nil
}
