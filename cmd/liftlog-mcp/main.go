package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	migrationsPath := flag.String("migrations", "migrations", "path to the SQL migrations (postgres only)")
	serverURL := flag.String("server", "", "read from a LiftLog server instead of the local store")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	} else {
		ctx := context.Background()
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		backend, err := storage.Open(ctx, cfg, *migrationsPath, log)
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer backend.Close()

		m := metrics.NewManager("liftlog", "mcp", prometheus.NewRegistry())
		tr := tracker.New(backend.Store, cfg.Analytics.Options(), m, log)
		if err := tr.Reload(ctx); err != nil {
			log.Error("failed to load history", "error", err)
			os.Exit(1)
		}
		ds = mcp.NewTrackerSource(tr)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
