// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/bodaay/rawfetch/pkg/kagglehub"
)

const barTemplate = `{{string . "prefix"}} {{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}`

var (
	infoColor    = color.New(color.FgGreen).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	dimColor     = color.New(color.Faint).SprintFunc()
)

// LiveRenderer prints a download bar and status lines for one dataset
// fetch on an interactive terminal.
type LiveRenderer struct {
	out    io.Writer
	handle string

	mu      sync.Mutex
	start   time.Time
	bar     *pb.ProgressBar
	files   int
	stopped bool
}

// NewLiveRenderer creates a renderer writing to stdout.
func NewLiveRenderer(handle string) *LiveRenderer {
	return &LiveRenderer{
		out:    os.Stdout,
		handle: handle,
		start:  time.Now(),
	}
}

// Handler returns a ProgressFunc that feeds events to the renderer.
func (lr *LiveRenderer) Handler() kagglehub.ProgressFunc {
	return func(ev kagglehub.ProgressEvent) {
		lr.mu.Lock()
		defer lr.mu.Unlock()
		if lr.stopped {
			return
		}
		lr.apply(ev)
	}
}

// Close finishes any active bar.
func (lr *LiveRenderer) Close() {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.stopped {
		return
	}
	lr.stopped = true
	lr.finishBar()
}

func (lr *LiveRenderer) apply(ev kagglehub.ProgressEvent) {
	switch ev.Event {
	case "resolve_start":
		fmt.Fprintln(lr.out, dimColor(fmt.Sprintf("Resolving %s ...", lr.handle)))
	case "resolved":
		fmt.Fprintf(lr.out, "%s %s\n", lr.handle, dimColor(ev.Message))
	case "cache_hit":
		fmt.Fprintf(lr.out, "%s %s\n", warningColor("cached:"), ev.Path)
	case "file_start":
		lr.finishBar()
		w, _ := termSize()
		lr.bar = pb.New64(ev.Total).
			SetTemplateString(barTemplate).
			Set(pb.Bytes, true).
			Set("prefix", ellipsizeMiddle(ev.Path, 32)).
			SetWriter(lr.out).
			SetWidth(w).
			Start()
	case "file_progress":
		if lr.bar == nil {
			return
		}
		if ev.Total > 0 && lr.bar.Total() != ev.Total {
			lr.bar.SetTotal(ev.Total)
		}
		lr.bar.SetCurrent(ev.Downloaded)
	case "file_done":
		if lr.bar != nil {
			lr.bar.SetCurrent(ev.Downloaded)
		}
		lr.finishBar()
		fmt.Fprintf(lr.out, "%s %s (%s)\n", infoColor("downloaded:"), ev.Path, humanBytes(ev.Downloaded))
	case "extract_start":
		fmt.Fprintf(lr.out, "extracting %s ...\n", ev.Path)
	case "extract_file":
		lr.files++
	case "error":
		lr.finishBar()
		fmt.Fprintf(lr.out, "%s %s\n", errorColor("error:"), ev.Message)
	case "done":
		summary := fmt.Sprintf("%s ready in %s", lr.handle, fmtDuration(time.Since(lr.start)))
		if lr.files > 0 {
			summary += fmt.Sprintf(" (%d files extracted)", lr.files)
		}
		fmt.Fprintf(lr.out, "%s %s\n", infoColor("✓"), summary)
	}
}

func (lr *LiveRenderer) finishBar() {
	if lr.bar != nil {
		lr.bar.Finish()
		lr.bar = nil
	}
}

// IsInteractive reports whether stdout is a terminal that can render bars.
func IsInteractive() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return strings.ToLower(os.Getenv("TERM")) != "dumb"
}

func termSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 100, 30
	}
	return w, h
}

func ellipsizeMiddle(s string, w int) string {
	r := []rune(s)
	if len(r) <= w || w < 5 {
		return s
	}
	half := (w - 1) / 2
	return string(r[:half]) + "…" + string(r[len(r)-(w-1-half):])
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n/div >= unit && exp < 6 {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
