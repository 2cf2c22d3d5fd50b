package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sortdownload/internal/cache"
	"sortdownload/internal/config"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	watchDir := filepath.Join(root, "Downloads")
	if err := os.MkdirAll(watchDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := config.NewConfig(filepath.Join(root, "SortDownload"), watchDir)
	cfg.GracePeriodSeconds = 0
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *SortApp {
	t.Helper()
	a, err := NewSortApp(cfg)
	if err != nil {
		t.Fatalf("NewSortApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func readLog(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.CacheDir, LogFileName))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	return string(data)
}

func TestSortApp_SortNow_FreshInstall(t *testing.T) {
	cfg := newTestConfig(t)
	for _, name := range []string{"a.txt", "b.zip"} {
		if err := os.WriteFile(filepath.Join(cfg.WatchDir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	a := newTestApp(t, cfg)

	out, err := a.SortNow(context.Background(), false)
	if err != nil {
		t.Fatalf("SortNow() error = %v", err)
	}
	if !out.Due {
		t.Fatal("Due = false on a fresh install")
	}

	bucket := out.Result.Bucket
	for _, name := range []string{"a.txt", "b.zip"} {
		if _, err := os.Stat(filepath.Join(bucket, name)); err != nil {
			t.Errorf("%s not in bucket: %v", name, err)
		}
		if _, err := os.Stat(filepath.Join(cfg.WatchDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s still in the watched directory", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(cfg.CacheDir, cache.FileName))
	if err != nil {
		t.Fatalf("reading cache file: %v", err)
	}
	want := `"sorted_date":"` + out.StampedAt.Format("2006-01-02 15:04:05") + `"`
	if !strings.Contains(string(data), want) {
		t.Errorf("cache file = %s, want it to contain %s", data, want)
	}

	log := readLog(t, cfg)
	if !strings.Contains(log, "no usable sort record") {
		t.Errorf("log missing the missing-record entry: %q", log)
	}

	// A second evaluation on the same day leaves new files alone.
	if err := os.WriteFile(filepath.Join(cfg.WatchDir, "c.pdf"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = a.SortNow(context.Background(), false)
	if err != nil {
		t.Fatalf("second SortNow() error = %v", err)
	}
	if out.Due {
		t.Error("second SortNow() ran a pass on the same day")
	}
	if _, err := os.Stat(filepath.Join(cfg.WatchDir, "c.pdf")); err != nil {
		t.Errorf("c.pdf moved on the same day: %v", err)
	}
}

func TestSortApp_SortNow_CorruptCache(t *testing.T) {
	cfg := newTestConfig(t)
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.CacheDir, cache.FileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.WatchDir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	a := newTestApp(t, cfg)

	out, err := a.SortNow(context.Background(), false)
	if err != nil {
		t.Fatalf("SortNow() error = %v", err)
	}
	if !out.Due || len(out.Result.Moved) != 1 {
		t.Errorf("Outcome = %+v, want a pass moving a.txt", out)
	}

	log := readLog(t, cfg)
	if !strings.Contains(log, "parsing sort record") {
		t.Errorf("log missing the parse error: %q", log)
	}
}

func TestSortApp_SortNow_PartialDownloadNames(t *testing.T) {
	names := []string{"notes.tmp", "video.part", "a.txt"}

	tests := []struct {
		name      string
		skip      bool
		wantMoved []string
		wantLeft  []string
	}{
		{
			name:      "default config moves everything",
			wantMoved: names,
		},
		{
			name:      "ignore_partial_downloads leaves them",
			skip:      true,
			wantMoved: []string{"a.txt"},
			wantLeft:  []string{"notes.tmp", "video.part"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.Filesystem.IgnorePartialDownloads = tt.skip
			for _, name := range names {
				if err := os.WriteFile(filepath.Join(cfg.WatchDir, name), []byte(name), 0644); err != nil {
					t.Fatal(err)
				}
			}
			a := newTestApp(t, cfg)

			out, err := a.SortNow(context.Background(), false)
			if err != nil {
				t.Fatalf("SortNow() error = %v", err)
			}
			for _, name := range tt.wantMoved {
				if _, err := os.Stat(filepath.Join(out.Result.Bucket, name)); err != nil {
					t.Errorf("%s not in bucket: %v", name, err)
				}
			}
			for _, name := range tt.wantLeft {
				if _, err := os.Stat(filepath.Join(cfg.WatchDir, name)); err != nil {
					t.Errorf("%s should stay in the watched directory: %v", name, err)
				}
			}
		})
	}
}

func TestSortApp_SortNow_SortignoreIsDirectory(t *testing.T) {
	cfg := newTestConfig(t)
	if err := os.Mkdir(filepath.Join(cfg.WatchDir, ".sortignore"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.WatchDir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	a := newTestApp(t, cfg)

	out, err := a.SortNow(context.Background(), false)
	if err != nil {
		t.Fatalf("SortNow() error = %v", err)
	}
	if len(out.Result.Moved) != 1 || out.Result.Moved[0] != "a.txt" {
		t.Errorf("Moved = %v, want [a.txt]", out.Result.Moved)
	}
	if out.StampedAt.IsZero() {
		t.Error("pass did not stamp the sort record")
	}
	if log := readLog(t, cfg); !strings.Contains(log, "ignoring unreadable ignore file") {
		t.Errorf("log missing the ignore file warning: %q", log)
	}
}

func TestSortApp_Status(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg)

	st, err := a.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.Due || !st.LastSorted.IsZero() {
		t.Errorf("Status = %+v, want due and never sorted", st)
	}
	if st.WatchDir != cfg.WatchDir {
		t.Errorf("WatchDir = %q, want %q", st.WatchDir, cfg.WatchDir)
	}
}

func TestSortApp_SingleInstance(t *testing.T) {
	cfg := newTestConfig(t)
	first := newTestApp(t, cfg)
	second := newTestApp(t, cfg)

	if _, err := first.SortNow(context.Background(), false); err != nil {
		t.Fatalf("first SortNow() error = %v", err)
	}
	if _, err := second.SortNow(context.Background(), true); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second SortNow() error = %v, want ErrAlreadyRunning", err)
	}

	// Status does not need the lock.
	if _, err := second.Status(); err != nil {
		t.Errorf("Status() error = %v", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := second.SortNow(context.Background(), true); err != nil {
		t.Errorf("SortNow() after the lock was released error = %v", err)
	}
}

func TestSortApp_Watch(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	// The watcher may not be subscribed yet; keep creating files until one is sorted.
	deadline := time.Now().Add(10 * time.Second)
	var sorted bool
	for i := 0; time.Now().Before(deadline); i++ {
		name := filepath.Join(cfg.WatchDir, "file-"+string(rune('a'+i%26))+".txt")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(filepath.Join(cfg.CacheDir, cache.FileName)); err == nil {
			sorted = true
			break
		}
	}
	if !sorted {
		t.Fatal("watch loop never completed a pass")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestSortApp_Watch_MissingDirectory(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.WatchDir = filepath.Join(t.TempDir(), "nope")
	a := newTestApp(t, cfg)

	if err := a.Watch(context.Background()); err == nil {
		t.Fatal("Watch() expected error for missing directory")
	}
}

func TestNewSortApp_InvalidLayout(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.BucketLayout = "weekly"
	if _, err := NewSortApp(cfg); err == nil {
		t.Fatal("NewSortApp() expected error")
	}
}
