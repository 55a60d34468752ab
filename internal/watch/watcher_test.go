// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg Config) (cancel func(), errCh <-chan error) {
	t.Helper()

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancelFn := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- w.Run(ctx) }()
	// Let Run enter its select loop before the test touches the tree.
	time.Sleep(50 * time.Millisecond)
	return cancelFn, ch
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "UIKit"), 0o755); err != nil {
		t.Fatal(err)
	}

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{}, 1)

	cancel, errCh := startWatcher(t, Config{
		Root:     root,
		Debounce: 150 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			calls++
			collected = append(collected, changed...)
			mu.Unlock()
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	defer cancel()

	for _, name := range []string{"UIKit/a.gd", "UIKit/b.gd", "UIKit/c.gd"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}
	// Any late callback would arrive within another window.
	time.Sleep(300 * time.Millisecond)

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("OnChange called %d times, want 1", calls)
	}
	for _, want := range []string{"UIKit/a.gd", "UIKit/b.gd", "UIKit/c.gd"} {
		if !slices.Contains(collected, want) {
			t.Errorf("changed paths %v missing %q", collected, want)
		}
	}
}

func TestWatcherIgnore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Tool", "cache"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := make(chan []string, 4)
	cancel, errCh := startWatcher(t, Config{
		Root:     root,
		Ignore:   []string{"**/*.tmp", "Tool/cache/**"},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			got <- changed
			return nil
		},
	})
	defer cancel()

	writeFile(t, filepath.Join(root, "Tool", "scratch.tmp"))
	writeFile(t, filepath.Join(root, "Tool", "x.swp"))
	writeFile(t, filepath.Join(root, "Tool", "main.gd"))

	select {
	case changed := <-got:
		if !slices.Equal(changed, []string{"Tool/main.gd"}) {
			t.Errorf("changed = %v, want [Tool/main.gd]", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherNewDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	got := make(chan []string, 8)
	cancel, errCh := startWatcher(t, Config{
		Root:     root,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			got <- changed
			return nil
		},
	})
	defer cancel()

	if err := os.Mkdir(filepath.Join(root, "Fresh"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Wait for the directory event to register the new watch.
	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for directory creation")
	}

	writeFile(t, filepath.Join(root, "Fresh", "addon.json"))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-got:
			if slices.Contains(changed, "Fresh/addon.json") {
				cancel()
				if err := <-errCh; err != nil {
					t.Fatalf("Run() error: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("file inside new directory was not reported")
		}
	}
}

func TestWatcherCallbackErrorKeepsRunning(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calls := make(chan struct{}, 4)
	cancel, errCh := startWatcher(t, Config{
		Root:     root,
		Debounce: 50 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			calls <- struct{}{}
			return errors.New("build failed")
		},
	})
	defer cancel()

	for _, name := range []string{"one.gd", "two.gd"} {
		writeFile(t, filepath.Join(root, name))
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("no callback for %s", name)
		}
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	cancel, errCh := startWatcher(t, Config{Root: t.TempDir()})
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherCancelWaitsForRebuild(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	started := make(chan struct{})
	var (
		once     sync.Once
		finished atomic.Bool
	)

	cancel, errCh := startWatcher(t, Config{
		Root:     root,
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context, _ []string) error {
			once.Do(func() { close(started) })
			<-ctx.Done()
			// Cleanup after cancellation, like removing a partial archive.
			time.Sleep(200 * time.Millisecond)
			finished.Store(true)
			return ctx.Err()
		},
	})
	defer cancel()

	writeFile(t, filepath.Join(root, "a.gd"))
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !finished.Load() {
		t.Error("Run returned before OnChange finished")
	}
}

func TestWatcherDoubleRun(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
	cancel()
	<-errCh
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		if _, err := New(Config{Root: t.TempDir(), Ignore: []string{"[unclosed"}}); err == nil {
			t.Error("expected error for invalid ignore pattern")
		}
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		if _, err := New(Config{Root: filepath.Join(t.TempDir(), "nope")}); err == nil {
			t.Error("expected error for missing root")
		}
	})

	t.Run("file root", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "f")
		writeFile(t, file)
		if _, err := New(Config{Root: file}); err == nil {
			t.Error("expected error for file root")
		}
	})
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores()}
	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"UIKit/.git/config", true},
		{".godot/imported/x.ctex", true},
		{"UIKit/button.gd.swp", true},
		{"UIKit/button.gd~", true},
		{"UIKit/.DS_Store", true},
		{"UIKit/button.gd", false},
		{"UIKit/addon.json", false},
	}
	for _, tt := range tests {
		if got := w.isIgnored(tt.rel); got != tt.want {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
