// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"path/filepath"
	"time"

	"github.com/addonpack/addonpack/internal/watch"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Debounce time.Duration
	// Ignore holds extra patterns relative to the addons root.
	Ignore []string
	// OnResult, when set, receives the outcome of every build.
	OnResult func(*Result, error)
}

// Watch builds once, then rebuilds whenever the addons root changes until
// ctx is canceled. Failed builds are reported through OnResult and logged;
// they do not stop watching.
func (b *Builder) Watch(ctx context.Context, opts WatchOptions) error {
	report := func(res *Result, err error) {
		if err != nil {
			b.logger.Error("build failed", "err", err)
		}
		if opts.OnResult != nil {
			opts.OnResult(res, err)
		}
	}

	report(b.Run(ctx))

	ignore := append([]string(nil), opts.Ignore...)
	if rel, ok := outputWithin(b.opts.AddonsDir, b.opts.OutputDir); ok {
		ignore = append(ignore, rel+"/**")
	}

	w, err := watch.New(watch.Config{
		Root:     b.opts.AddonsDir,
		Ignore:   ignore,
		Debounce: opts.Debounce,
		Logger:   b.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			b.logger.Info("change detected, rebuilding", "files", len(changed))
			report(b.Run(ctx))
			return nil
		},
	})
	if err != nil {
		return err
	}
	b.logger.Info("watching for changes", "root", w.Root())
	return w.Run(ctx)
}

// outputWithin returns outputDir relative to addonsDir, slash-separated, when
// it lies inside it. Rebuild output must not retrigger a build.
func outputWithin(addonsDir, outputDir string) (string, bool) {
	addons, err := filepath.Abs(addonsDir)
	if err != nil {
		return "", false
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(addons, out)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
