package sorter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Options carries the per-installation settings of a sort service.
type Options struct {
	WatchDir     string
	GracePeriod  time.Duration
	BucketLayout BucketLayout
}

// Service evaluates filesystem events against the sort gate and runs sort
// passes. It is not safe for concurrent use; callers feed it one event at a time.
type Service struct {
	cache  CacheStore
	fsmgr  FilesystemManager
	logger Logger
	clock  Clock
	idgen  IDGenerator
	opts   Options
}

// NewService creates a Service with the provided dependencies.
func NewService(cache CacheStore, fsmgr FilesystemManager, logger Logger, clock Clock, idgen IDGenerator, opts Options) *Service {
	if opts.BucketLayout == "" {
		opts.BucketLayout = LayoutMonth
	}
	return &Service{
		cache:  cache,
		fsmgr:  fsmgr,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
		opts:   opts,
	}
}

// Outcome describes what one evaluation did.
type Outcome struct {
	PassID     string
	LastSorted time.Time // zero when never sorted
	Due        bool
	Result     *MoveResult // nil unless a pass ran
	StampedAt  time.Time   // zero unless the record was saved
}

// HandleEvent evaluates a created entry reported by the watcher.
func (s *Service) HandleEvent(ctx context.Context, createdPath string) (*Outcome, error) {
	return s.evaluate(ctx, createdPath, false)
}

// SortNow evaluates without a triggering event. With force the gate is bypassed.
func (s *Service) SortNow(ctx context.Context, force bool) (*Outcome, error) {
	return s.evaluate(ctx, "", force)
}

func (s *Service) evaluate(ctx context.Context, trigger string, force bool) (*Outcome, error) {
	passID := s.idgen.New()

	if err := s.cache.EnsureDir(); err != nil {
		return nil, fmt.Errorf("ensuring cache directory: %w", err)
	}

	last, err := s.lastSorted(passID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := &Outcome{
		PassID:     passID,
		LastSorted: last,
		Due:        force || IsDue(last, now),
	}
	if !out.Due {
		s.logger.Info("sorted date matches today, skipping",
			"pass", passID, "last_sorted", last.Format(RecordTimeLayout), "trigger", trigger)
		return out, nil
	}

	s.logger.Info("sort pass started", "pass", passID, "trigger", trigger, "forced", force)
	result, err := s.moveDue(ctx, passID)
	out.Result = result
	if err != nil {
		return out, fmt.Errorf("sort pass: %w", err)
	}

	stamp := s.clock.Now()
	if err := s.cache.Save(stamp); err != nil {
		return out, fmt.Errorf("saving sort record: %w", err)
	}
	out.StampedAt = stamp

	s.logger.Info("sort pass finished",
		"pass", passID, "bucket", result.Bucket, "moved", len(result.Moved), "failed", len(result.Failed))
	return out, nil
}

// lastSorted loads the last-sorted time. A missing or unparseable record is
// logged and reported as the zero time.
func (s *Service) lastSorted(passID string) (time.Time, error) {
	rec, err := s.cache.Load()
	if err != nil {
		if IsRecordUnavailable(err) {
			s.logger.Warn("no usable sort record, treating as never sorted", "pass", passID, "error", err)
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("loading sort record: %w", err)
	}
	return rec.SortedDate, nil
}

// Status is a read-only snapshot used by the status command.
type Status struct {
	WatchDir   string
	LastSorted time.Time // zero when never sorted
	Due        bool
	Bucket     string // bucket a pass would use right now
}

// Status reports the current gate state without moving anything.
func (s *Service) Status() (*Status, error) {
	last, err := s.lastSorted("status")
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	return &Status{
		WatchDir:   s.opts.WatchDir,
		LastSorted: last,
		Due:        IsDue(last, now),
		Bucket:     filepath.Join(s.opts.WatchDir, BucketName(s.opts.BucketLayout, now)),
	}, nil
}
