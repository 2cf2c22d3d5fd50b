package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"sortdownload/internal/cache"
	"sortdownload/internal/config"
	"sortdownload/internal/fs"
	"sortdownload/internal/sorter"
	"sortdownload/internal/watch"
)

// LockFileName guards against two processes sorting the same directory.
const LockFileName = "SortDownload.lock"

// ErrAlreadyRunning is returned when another process holds the lock.
var ErrAlreadyRunning = errors.New("another sortdownload instance is already running")

// SortApp is the application layer between the CLI and the sort service.
// It constructs all dependencies from config and owns the log file and the
// instance lock. The caller must call Close when done.
type SortApp struct {
	cfg     *config.Config
	service *sorter.Service
	logger  *slogAdapter
	lock    *flock.Flock
	logFile *os.File
}

// NewSortApp creates a fully wired SortApp from the given config.
func NewSortApp(cfg *config.Config) (*SortApp, error) {
	layout, err := sorter.ParseBucketLayout(cfg.BucketLayout)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStoreFromConfig(cfg.Cache, cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("creating cache store: %w", err)
	}

	l, logFile, err := newLogger(cfg.CacheDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	ignore := cfg.Filesystem.Ignore
	if cfg.Filesystem.IgnorePartialDownloads {
		ignore = append(append([]string{}, ignore...), fs.PartialDownloadPatterns...)
	}
	fsmgr := fs.NewOSFilesystemManager(ignore, logger)
	svc := sorter.NewService(store, fsmgr, logger, sorter.RealClock{}, sorter.UUIDGenerator{}, sorter.Options{
		WatchDir:     cfg.WatchDir,
		GracePeriod:  cfg.GracePeriod(),
		BucketLayout: layout,
	})

	return &SortApp{
		cfg:     cfg,
		service: svc,
		logger:  logger,
		lock:    flock.New(filepath.Join(cfg.CacheDir, LockFileName)),
		logFile: logFile,
	}, nil
}

// acquireLock takes the instance lock. Only commands that move files or
// write the sort record need it.
func (a *SortApp) acquireLock() error {
	if a.lock.Locked() {
		return nil
	}
	ok, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	return nil
}

// Watch runs the watch loop until ctx is cancelled.
func (a *SortApp) Watch(ctx context.Context) error {
	if err := a.acquireLock(); err != nil {
		return err
	}
	if info, err := os.Stat(a.cfg.WatchDir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("watch directory is not a directory: %s", a.cfg.WatchDir)
	}

	loop := watch.NewLoop(a.cfg.WatchDir, a.service, a.logger)
	return loop.Run(ctx)
}

// SortNow runs one evaluation immediately. With force the daily gate is bypassed.
func (a *SortApp) SortNow(ctx context.Context, force bool) (*sorter.Outcome, error) {
	if err := a.acquireLock(); err != nil {
		return nil, err
	}
	return a.service.SortNow(ctx, force)
}

// Status reports the gate state without taking the lock.
func (a *SortApp) Status() (*sorter.Status, error) {
	return a.service.Status()
}

// Close releases the lock and closes the log file.
func (a *SortApp) Close() error {
	var errs []error
	if a.lock.Locked() {
		if err := a.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("releasing lock: %w", err))
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
