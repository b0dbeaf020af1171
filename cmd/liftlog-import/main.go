package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/claude/liftlog/internal/upload"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	migrationsPath := flag.String("migrations", "migrations", "path to the SQL migrations (postgres only)")
	exportPath := flag.String("path", "", "Alpha Progression export, or a directory of exports (required)")
	serverURL := flag.String("server", "", "upload to a LiftLog server instead of writing the local store")
	apiKey := flag.String("api-key", os.Getenv("LIFTLOG_AUTH_API_KEY"), "API key for -server")
	stateDir := flag.String("state-dir", "", "upload state directory (default ~/.liftlog-import)")
	workers := flag.Int("workers", 4, "files parsed or uploaded in parallel")
	dryRun := flag.Bool("dry-run", false, "parse and report counts without writing anything")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -path <export.csv|dir> [-config config.yaml | -server <URL> -api-key <key>] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *dryRun {
		log.Info("DRY RUN mode: exports are parsed but nothing is written")
	}

	ctx := context.Background()
	if *serverURL != "" {
		runUpload(ctx, log, *serverURL, *apiKey, *stateDir, *exportPath, *workers, *dryRun)
		return
	}
	runLocal(ctx, log, *configPath, *migrationsPath, *exportPath, *workers, *dryRun)
}

// runUpload sends new or changed exports to a remote server.
func runUpload(ctx context.Context, log *slog.Logger, serverURL, apiKey, stateDir, path string, workers int, dryRun bool) {
	if apiKey == "" && !dryRun {
		fmt.Fprintf(os.Stderr, "Error: -api-key (or LIFTLOG_AUTH_API_KEY) is required with -server\n")
		os.Exit(1)
	}
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		stateDir = filepath.Join(home, ".liftlog-import")
	}

	state, err := upload.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		log.Error("-server needs a directory of exports", "path", path)
		os.Exit(1)
	}

	uploader := upload.New(upload.NewClient(serverURL, apiKey), state, path, dryRun, workers, log)
	stats, err := uploader.Run(ctx)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	log.Info("upload complete",
		"files_total", stats.FilesTotal,
		"files_uploaded", stats.FilesUploaded,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_sent", stats.SessionsSent,
		"workouts_saved", stats.WorkoutsSaved,
	)
}

// runLocal parses every export in parallel and imports the workouts into the
// configured store.
func runLocal(ctx context.Context, log *slog.Logger, configPath, migrationsPath, path string, workers int, dryRun bool) {
	files, err := exportFiles(path)
	if err != nil {
		log.Error("failed to list exports", "error", err)
		os.Exit(1)
	}

	parsed := make([][]models.Workout, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", f, err)
			}
			ws, err := alpha.ParseWorkouts(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", f, err)
			}
			parsed[i] = ws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("parse failed", "error", err)
		os.Exit(1)
	}

	var workouts []models.Workout
	for _, ws := range parsed {
		workouts = append(workouts, ws...)
	}
	log.Info("exports parsed", "files", len(files), "workouts", len(workouts))
	if dryRun {
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	backend, err := storage.Open(ctx, cfg, migrationsPath, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	m := metrics.NewManager("liftlog", "import", prometheus.NewRegistry())
	tr := tracker.New(backend.Store, cfg.Analytics.Options(), m, log)
	if err := tr.Reload(ctx); err != nil {
		log.Error("failed to load history", "error", err)
		os.Exit(1)
	}

	res, err := tr.ImportWorkouts(ctx, workouts)
	if err != nil {
		log.Error("import failed", "error", err, "saved", res.Saved)
		os.Exit(1)
	}

	stats := tr.Stats()
	log.Info("import complete",
		"received", res.Received,
		"saved", res.Saved,
		"skipped", res.Skipped,
		"total_workouts", stats.TotalWorkouts,
		"records", len(tr.Records("")),
	)
}

func exportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return upload.FindExports(path)
}
