// Package jobs runs periodic maintenance work on a single background worker.
package jobs

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// JobUploadSweep removes uploads orphaned by imports that never finished.
const JobUploadSweep = "upload_sweep"

type Service struct {
	uploadDir string
	interval  time.Duration
	queue     chan job
	now       func() time.Time
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

// New schedules an upload sweep every interval. Files older than interval are
// removed. A zero interval disables the schedule.
func New(uploadDir string, interval time.Duration) *Service {
	return &Service{
		uploadDir: uploadDir,
		interval:  interval,
		queue:     make(chan job, 16),
		now:       time.Now,
	}
}

// Start runs the worker until ctx ends. With a schedule, the first sweep is
// queued immediately.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.interval > 0 {
		s.enqueueSweep()
		go s.scheduleSweeps(ctx)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	start := s.now()
	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	slog.Info("job run finished",
		"jobType", j.Type,
		"status", status,
		"duration_ms", s.now().Sub(start).Milliseconds(),
		"details", details,
	)
	return details, err
}

func (s *Service) scheduleSweeps(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueSweep()
		}
	}
}

func (s *Service) enqueueSweep() {
	cutoff := s.now().Add(-s.interval)
	s.Enqueue(JobUploadSweep, func(context.Context) (any, error) {
		removed, err := SweepUploads(s.uploadDir, cutoff)
		return map[string]any{"removed": removed, "cutoff": cutoff}, err
	})
}

// SweepUploads deletes regular files in dir last modified before cutoff. A
// missing dir is not an error.
func SweepUploads(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
