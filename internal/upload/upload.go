package upload

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"golang.org/x/sync/errgroup"
)

// Sender delivers one export. *Client is the production implementation.
type Sender interface {
	SendCSV(ctx context.Context, data []byte) (*ingest.Result, error)
}

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent  int
	WorkoutsSaved int
}

// Uploader walks a directory of .csv exports and sends the new or changed
// ones to the server.
type Uploader struct {
	sender  Sender
	state   *StateDB
	dir     string
	dryRun  bool
	workers int
	log     *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a new Uploader. In dry-run mode exports are parsed locally and
// nothing is sent or recorded.
func New(sender Sender, state *StateDB, dir string, dryRun bool, workers int, log *slog.Logger) *Uploader {
	if workers < 1 {
		workers = 1
	}
	return &Uploader{
		sender:  sender,
		state:   state,
		dir:     dir,
		dryRun:  dryRun,
		workers: workers,
		log:     log,
	}
}

// Run executes the upload pipeline. A file that fails is counted and logged
// and does not stop the others.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindExports(u.dir)
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u.process(ctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return u.snapshot(), err
	}
	return u.snapshot(), nil
}

func (u *Uploader) process(ctx context.Context, path string) {
	relPath, _ := filepath.Rel(u.dir, path)

	data, err := os.ReadFile(path)
	if err != nil {
		u.fail(relPath, "read", err)
		return
	}
	hash := HashBytes(data)

	if u.state != nil {
		uploaded, err := u.state.IsUploaded(relPath, hash)
		if err != nil {
			u.fail(relPath, "state check", err)
			return
		}
		if uploaded {
			u.count(func(s *Stats) { s.FilesSkipped++ })
			return
		}
	}

	if u.dryRun {
		workouts, err := alpha.ParseWorkouts(bytes.NewReader(data))
		if err != nil {
			u.fail(relPath, "parse", err)
			return
		}
		u.log.Info("dry run", "file", relPath, "sessions", len(workouts))
		u.count(func(s *Stats) { s.SessionsSent += len(workouts) })
		return
	}

	result, err := u.sender.SendCSV(ctx, data)
	if err != nil {
		u.fail(relPath, "send", err)
		return
	}
	if u.state != nil {
		if err := u.state.MarkUploaded(relPath, hash, result.SessionsReceived, result.WorkoutsSaved); err != nil {
			u.log.Warn("uploaded but not recorded", "file", relPath, "error", err)
		}
	}
	u.log.Info("uploaded", "file", relPath, "sessions", result.SessionsReceived, "saved", result.WorkoutsSaved)
	u.count(func(s *Stats) {
		s.FilesUploaded++
		s.SessionsSent += result.SessionsReceived
		s.WorkoutsSaved += result.WorkoutsSaved
	})
}

func (u *Uploader) fail(relPath, step string, err error) {
	u.log.Warn(step+" failed", "file", relPath, "error", err)
	u.count(func(s *Stats) { s.FilesErrored++ })
}

func (u *Uploader) count(fn func(*Stats)) {
	u.mu.Lock()
	fn(&u.stats)
	u.mu.Unlock()
}

func (u *Uploader) snapshot() *Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.stats
	return &s
}

// FindExports returns every .csv file under dir, sorted.
func FindExports(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
