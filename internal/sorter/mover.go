package sorter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// MoveFailure records a file that could not be moved but did not stop the pass.
type MoveFailure struct {
	Name string
	Err  error
}

// MoveResult summarizes one sort pass.
type MoveResult struct {
	Bucket string // absolute bucket path
	Moved  []string
	Failed []MoveFailure
}

// skippable reports whether a failed move is logged and skipped rather than
// aborting the pass. Files may be locked by the downloading program or
// renamed away between the scan and the move.
func skippable(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist)
}

// moveDue relocates every regular file directly inside the watched directory
// into the bucket for the current month. Permission errors and vanished files
// are recorded in the result and the pass goes on; any other error aborts it.
//
// Same-named files already in the bucket are replaced.
func (s *Service) moveDue(ctx context.Context, passID string) (*MoveResult, error) {
	// Let in-flight downloads settle before scanning.
	if err := s.clock.Sleep(ctx, s.opts.GracePeriod); err != nil {
		return nil, fmt.Errorf("waiting before scan: %w", err)
	}

	entries, err := s.fsmgr.ListFiles(s.opts.WatchDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.opts.WatchDir, err)
	}

	bucket := filepath.Join(s.opts.WatchDir, BucketName(s.opts.BucketLayout, s.clock.Now()))
	if err := s.fsmgr.EnsureDir(bucket); err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	result := &MoveResult{Bucket: bucket}
	for _, e := range entries {
		dst := filepath.Join(bucket, e.Name)
		if err := s.fsmgr.Move(e.Path, dst); err != nil {
			if !skippable(err) {
				return result, fmt.Errorf("moving %s: %w", e.Name, err)
			}
			s.logger.Error("move failed", "pass", passID, "file", e.Name, "error", err)
			result.Failed = append(result.Failed, MoveFailure{Name: e.Name, Err: err})
			continue
		}
		s.logger.Debug("file moved", "pass", passID, "file", e.Name, "bucket", bucket)
		result.Moved = append(result.Moved, e.Name)
	}
	return result, nil
}
