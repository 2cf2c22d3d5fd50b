// Package watch subscribes to creation events under the downloads directory
// and feeds them, one at a time, to the sort service.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"sortdownload/internal/sorter"
)

// DefaultBufferSize is the number of fsnotify events queued while a sort pass is running.
const DefaultBufferSize = 256

// Handler evaluates one created path. *sorter.Service implements it.
type Handler interface {
	HandleEvent(ctx context.Context, createdPath string) (*sorter.Outcome, error)
}

// State is the loop's position in its two-state cycle.
type State int32

const (
	Idle State = iota
	Evaluating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Evaluating:
		return "evaluating"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Loop watches a directory tree and runs the handler for every Create event.
// Events are handled sequentially; those arriving during a pass wait in the
// watcher's buffer.
type Loop struct {
	dir        string
	handler    Handler
	logger     sorter.Logger
	bufferSize uint

	state atomic.Int32
	ready chan struct{}
}

// NewLoop creates a loop over dir. Call Run to start watching.
func NewLoop(dir string, handler Handler, logger sorter.Logger) *Loop {
	return &Loop{
		dir:        dir,
		handler:    handler,
		logger:     logger,
		bufferSize: DefaultBufferSize,
		ready:      make(chan struct{}),
	}
}

// State returns whether the loop is waiting or running an evaluation.
func (l *Loop) State() State { return State(l.state.Load()) }

// Ready is closed once the subscription is in place.
func (l *Loop) Ready() <-chan struct{} { return l.ready }

// Run subscribes to dir and its subdirectories and handles events until ctx
// is cancelled, then closes the subscription and returns nil. A handler error
// other than cancellation stops the loop and is returned.
func (l *Loop) Run(ctx context.Context) error {
	w, err := fsnotify.NewBufferedWatcher(l.bufferSize)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := l.addTree(w, l.dir); err != nil {
		return err
	}
	close(l.ready)
	l.logger.Info("watching for new downloads", "dir", l.dir)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopped watching", "dir", l.dir)
			return nil

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			// Overflow and similar errors lose events but the next one still triggers a pass.
			l.logger.Error("watcher error", "error", err)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if err := l.handle(ctx, w, ev.Name); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) handle(ctx context.Context, w *fsnotify.Watcher, name string) error {
	if info, err := os.Lstat(name); err == nil && info.IsDir() {
		if err := l.addTree(w, name); err != nil {
			l.logger.Warn("could not watch new directory", "dir", name, "error", err)
		}
	}

	l.state.Store(int32(Evaluating))
	defer l.state.Store(int32(Idle))

	if _, err := l.handler.HandleEvent(ctx, name); err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil
		}
		return fmt.Errorf("handling %s: %w", name, err)
	}
	return nil
}

// addTree watches root and every directory below it. fsnotify is not
// recursive, so bucket folders need their own watches.
func (l *Loop) addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("walking %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}
