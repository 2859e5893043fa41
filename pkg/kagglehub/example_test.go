// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package kagglehub_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/bodaay/rawfetch/pkg/kagglehub"
)

func ExampleDatasetDownload() {
	cfg := kagglehub.Settings{
		ForceDownload: true, // always fetch a fresh copy
	}

	progress := func(e kagglehub.ProgressEvent) {
		switch e.Event {
		case "resolved":
			fmt.Printf("Resolved %s (%s)\n", e.Handle, e.Message)
		case "file_done":
			fmt.Printf("Downloaded: %s\n", e.Path)
		case "done":
			fmt.Println("Complete!")
		}
	}

	path, err := kagglehub.DatasetDownload(context.Background(), "zynicide/wine-reviews", cfg, progress)
	if errors.Is(err, kagglehub.ErrUnauthorized) {
		fmt.Println("Set KAGGLE_USERNAME and KAGGLE_KEY")
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Files are in", path)
}

func ExamplePlanDataset() {
	plan, err := kagglehub.PlanDataset(context.Background(), "zynicide/wine-reviews", kagglehub.Settings{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("%s version %d has %d files:\n", plan.Handle, plan.Version, len(plan.Items))
	for _, item := range plan.Items {
		fmt.Printf("  %s (%d bytes)\n", item.Name, item.Size)
	}
}

func ExampleParseHandle() {
	h, _ := kagglehub.ParseHandle("zynicide/wine-reviews/versions/4")
	fmt.Println(h.Owner, h.Dataset, h.Version)

	fmt.Println(kagglehub.IsValidHandle("zynicide/wine-reviews")) // true
	fmt.Println(kagglehub.IsValidHandle("wine-reviews"))          // false (no owner)
	fmt.Println(kagglehub.IsValidHandle("/wine-reviews"))         // false (empty owner)
	fmt.Println(kagglehub.IsValidHandle("a/b/versions/latest"))   // false (bad version)

	// Output:
	// zynicide wine-reviews 4
	// true
	// false
	// false
	// false
}
