// pagescan renders one page through the Puppet service and reports what came
// back: detected trackers, the stored capture, and optionally a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/swisscows/browsebridge/internal/bridge"
	"github.com/swisscows/browsebridge/internal/config"
	"github.com/swisscows/browsebridge/internal/protocol"
	"github.com/swisscows/browsebridge/internal/snapshot"
)

func main() {
	var (
		pageURL   = flag.String("url", "", "page to scan (required)")
		format    = flag.String("format", "jpeg", "screenshot format")
		quality   = flag.Int("quality", 80, "screenshot quality (0-100)")
		width     = flag.Int("width", 1280, "viewport width")
		height    = flag.Int("height", 800, "viewport height")
		waitEvent = flag.String("wait", "networkidle0", "renderer wait condition")
		timeout   = flag.Duration("timeout", 60*time.Second, "session timeout")
		summary   = flag.Bool("summary", false, "also fetch a page summary")
		language  = flag.String("language", "en", "summary language")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *pageURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := snapshot.NewStore(cfg.SnapshotDir)
	if err != nil {
		slog.Error("failed to open capture store", "dir", cfg.SnapshotDir, "error", err)
		os.Exit(1)
	}

	svc := bridge.NewService(cfg, store, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := svc.Browse(ctx, protocol.Request{
		URL:          *pageURL,
		ImageType:    *format,
		ImageQuality: *quality,
		Width:        *width,
		Height:       *height,
		WaitForEvent: *waitEvent,
	})
	if err != nil {
		slog.Error("scan failed", "url", *pageURL, "error", err)
		os.Exit(1)
	}

	fmt.Printf("trackers: %d\n", len(result.Trackers))
	for _, t := range result.Trackers {
		fmt.Printf("  %-12s %s (%s)\n", t.Category, t.Name, t.BaseURL)
	}

	if result.Capture != nil {
		fmt.Printf("capture: %s (%s, %dx%d, %d bytes)\n",
			result.Capture.ID, result.Capture.Format,
			result.Capture.Width, result.Capture.Height, result.Capture.SizeBytes)
	}
	if result.ServiceError != nil {
		fmt.Printf("service error: %s\n", result.ServiceError)
	}

	if *summary {
		if text := svc.Summarize(ctx, *pageURL, *language); text != "" {
			fmt.Printf("summary: %s\n", text)
		} else {
			fmt.Println("summary: (unavailable)")
		}
	}
}
