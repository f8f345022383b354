package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set"
	"github.com/robfig/cron/v3"
)

// Sweeper removes media files no row references any more. Deletes commit
// the row before touching files, so a crash in between leaves orphans
// behind for this job.
type Sweeper struct {
	db       *Database
	media    *MediaStore
	grace    time.Duration
	logger   *log.Logger
	sweeping atomic.Bool
	now      func() time.Time
}

func NewSweeper(db *Database, media *MediaStore, cfg CleanupConfig, logger *log.Logger) *Sweeper {
	return &Sweeper{
		db:     db,
		media:  media,
		grace:  time.Duration(cfg.GraceMinutes) * time.Minute,
		logger: logger.With("component", "cleanup"),
		now:    time.Now,
	}
}

// SweepResult reports what a sweep did.
type SweepResult struct {
	Scanned int
	Removed int
}

// Sweep walks the media directories and deletes unreferenced files older
// than the grace period. The default cover is always kept.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Info("sweep skipped: already running")
		return result, nil
	}
	defer s.sweeping.Store(false)

	referenced, err := s.referencedPaths(ctx)
	if err != nil {
		return result, err
	}

	cutoff := s.now().Add(-s.grace)
	for _, dir := range []string{s.media.audioDir, s.media.imageDir} {
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("error accessing path", "path", path, "err", err)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				return nil
			}
			result.Scanned++
			clean := filepath.Clean(path)
			if referenced.Contains(clean) || s.media.IsDefaultCover(clean) {
				return nil
			}
			info, err := d.Info()
			if err != nil || info.ModTime().After(cutoff) {
				return nil
			}
			s.media.Delete(clean)
			result.Removed++
			return nil
		})
		if walkErr != nil {
			return result, fmt.Errorf("sweep %s: %w", dir, walkErr)
		}
	}

	s.logger.Info("media sweep finished", "scanned", result.Scanned, "removed", result.Removed)
	return result, nil
}

func (s *Sweeper) referencedPaths(ctx context.Context) (mapset.Set, error) {
	songPaths, err := s.db.Songs.AllMediaPaths(ctx)
	if err != nil {
		return nil, err
	}
	coverPaths, err := s.db.Playlists.AllCoverPaths(ctx)
	if err != nil {
		return nil, err
	}
	set := mapset.NewSet()
	for _, p := range append(songPaths, coverPaths...) {
		set.Add(filepath.Clean(p))
	}
	return set, nil
}

// newScheduler returns a cron runner with the sweep registered on schedule.
// The caller adds any other jobs, starts it once and stops it on shutdown.
func newScheduler(sweeper *Sweeper, cfg CleanupConfig, logger *log.Logger) (*cron.Cron, error) {
	scheduler := cron.New()
	if !cfg.Enabled {
		logger.Info("scheduled media cleanup is disabled")
		return scheduler, nil
	}
	_, err := scheduler.AddFunc(cfg.Schedule, func() {
		logger.Info("cron job triggered: starting media sweep")
		if _, err := sweeper.Sweep(context.Background()); err != nil {
			logger.Error("media sweep failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule media cleanup %q: %w", cfg.Schedule, err)
	}
	logger.Info("scheduled media cleanup registered", "schedule", cfg.Schedule)
	return scheduler, nil
}
