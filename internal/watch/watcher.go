// SPDX-License-Identifier: MPL-2.0

// Package watch triggers rebuilds when the addons tree changes.
//
// Every directory below the root is registered with fsnotify. Events inside
// the debounce window are merged, and OnChange receives the changed paths
// once the tree has been quiet for the whole window. A rebuild still running
// when the window closes is not interrupted; the pending changes are retried
// after another window.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are never reported: VCS metadata, the Godot editor cache
// and editor scratch files.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.godot/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

type (
	Config struct {
		// Root is the addons root. Empty means the working directory.
		Root string
		// Ignore holds extra doublestar patterns relative to Root.
		Ignore []string
		// Debounce is the quiet period before OnChange fires; <= 0 uses 500ms.
		Debounce time.Duration
		// OnChange receives the sorted, slash-separated paths relative to
		// Root that changed. A returned error is logged and watching goes on.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives watcher diagnostics; nil discards them.
		Logger *log.Logger
	}

	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		root     string
		started  atomic.Bool
	}
)

// New validates cfg and registers every non-ignored directory below Root.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", absRoot)
	}

	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		logger:   logger,
		debounce: debounce,
		root:     absRoot,
	}
	if err := w.addTree(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Run processes events until ctx is canceled, then returns nil once any
// OnChange call in progress has returned. Fatal fsnotify errors (resource
// exhaustion) are returned.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu       sync.Mutex
		pending  = make(map[string]struct{})
		timer    *time.Timer
		running  atomic.Bool
		stopped  bool
		inflight sync.WaitGroup
	)

	fire := func() {
		mu.Lock()
		if stopped || ctx.Err() != nil {
			mu.Unlock()
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("rebuild still running, postponing changes")
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		// Added under mu before stopped is set, so Wait never races Add.
		inflight.Add(1)
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		defer func() {
			running.Store(false)
			inflight.Done()
		}()

		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}

		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("rebuild failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		inflight.Wait()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			rel, ok := w.relative(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddTree(evt.Name)
			}
			w.logger.Debug("change", "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// addTree registers dir and every non-ignored directory below it.
// Unreadable directories are skipped with a warning.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping unreadable path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", dir, err)
	}
	return nil
}

// maybeAddTree extends the watch to a directory created after startup.
func (w *Watcher) maybeAddTree(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watching new directory", "path", path, "err", err)
	}
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// isIgnored reports whether rel (slash-separated, relative to Root) matches
// an ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range w.ignores {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
