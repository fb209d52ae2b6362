package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/swisscows/browsebridge/internal/api"
	"github.com/swisscows/browsebridge/internal/bridge"
	"github.com/swisscows/browsebridge/internal/config"
	"github.com/swisscows/browsebridge/internal/relay"
	"github.com/swisscows/browsebridge/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("bridge config loaded",
		"puppet_url", cfg.PuppetURL,
		"summarizer_url", cfg.SummarizerURL,
		"bind_addr", cfg.BindAddr,
		"snapshot_dir", cfg.SnapshotDir,
		"streams_file", cfg.StreamsFile,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	streams := relay.DefaultConfig()
	if cfg.StreamsFile != "" {
		streams, err = relay.LoadConfig(cfg.StreamsFile)
		if err != nil {
			slog.Error("failed to load streams config", "path", cfg.StreamsFile, "error", err)
			os.Exit(1)
		}
	}

	store, err := snapshot.NewStore(cfg.SnapshotDir)
	if err != nil {
		slog.Error("failed to open capture store", "dir", cfg.SnapshotDir, "error", err)
		os.Exit(1)
	}

	broker := relay.NewBroker(streams.BufferSize)
	svc := bridge.NewService(cfg, store, broker, streams)
	h := api.NewServer(svc, broker)

	srv := &http.Server{Addr: cfg.BindAddr, Handler: h}

	go func() {
		slog.Info("bridge listening", "addr", cfg.BindAddr, "docs", "http://"+cfg.BindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("bridge server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("bridge shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
