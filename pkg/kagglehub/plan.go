// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub

import (
	"context"
)

// PlanItem represents a single file of a dataset version.
type PlanItem struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Plan lists the files of a dataset version without downloading them.
type Plan struct {
	Handle  string     `json:"handle"`
	Version int        `json:"version"`
	Items   []PlanItem `json:"items"`
}

// PlanDataset resolves the dataset version and lists its files.
func PlanDataset(ctx context.Context, handle string, cfg Settings) (*Plan, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	h, err := ParseHandle(handle)
	if err != nil {
		return nil, err
	}

	httpc := buildHTTPClient()
	creds := resolveCredentials(cfg)

	v, err := resolveVersion(ctx, httpc, creds, cfg.Endpoint, h)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Handle: h.Owner + "/" + h.Dataset, Version: v}
	token := ""
	for {
		var page struct {
			DatasetFiles []struct {
				Name       string `json:"name"`
				TotalBytes int64  `json:"totalBytes"`
			} `json:"datasetFiles"`
			NextPageToken string `json:"nextPageToken"`
		}
		if err := getJSON(ctx, httpc, creds, listURL(cfg.Endpoint, h, v, token), &page); err != nil {
			return nil, err
		}
		for _, f := range page.DatasetFiles {
			plan.Items = append(plan.Items, PlanItem{Name: f.Name, Size: f.TotalBytes})
		}
		if page.NextPageToken == "" || page.NextPageToken == token {
			break
		}
		token = page.NextPageToken
	}
	return plan, nil
}
