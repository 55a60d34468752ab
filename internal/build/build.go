// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/addonpack/addonpack/pkg/addon"
	"github.com/addonpack/addonpack/pkg/archive"
	"github.com/addonpack/addonpack/pkg/category"
	"github.com/addonpack/addonpack/pkg/manifest"
	"github.com/addonpack/addonpack/pkg/resolver"
)

const (
	// IconSuffix is appended to the addon directory name for copied icons.
	IconSuffix = "_icon.png"
	// ZipExtension is appended to the addon directory name for archives.
	ZipExtension = ".zip"
)

type (
	// Options configures a Builder.
	Options struct {
		AddonsDir string
		OutputDir string
		// DefaultIcon is copied to DefaultIcon.png when an addon has no
		// usable icon. Empty uses the built-in icon.
		DefaultIcon string
		// Jobs bounds concurrent archive assembly; < 1 means 1.
		Jobs   int
		Logger *log.Logger
	}

	// Archive describes one written zip.
	Archive struct {
		Addon string
		Path  string
		Size  int64
		Stats archive.Stats
	}

	// Result is the outcome of a successful Run.
	Result struct {
		Manifest   manifest.Document
		Categories category.Categories
		// Archives is in discovery order.
		Archives []Archive
		// DefaultIconUsed reports whether DefaultIcon.png was written.
		DefaultIconUsed bool
		Duration        time.Duration
	}

	// Builder packages every addon of an addons root.
	Builder struct {
		opts   Options
		logger *log.Logger
	}

	// job carries one addon through archive assembly.
	job struct {
		addon   *addon.Addon
		archive Archive
	}
)

// New returns a Builder for opts.
func New(opts Options) *Builder {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{opts: opts, logger: logger}
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// Run builds every addon. A failing addon stops the run, and no manifest is
// written.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	catalog, err := OpenCatalog(b.opts.AddonsDir, b.opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(b.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %w", addon.ErrIO, err)
	}
	names, err := catalog.Names()
	if err != nil {
		return nil, err
	}
	b.logger.Debug("discovered addons", "count", len(names), "root", catalog.Root())

	jobs := make([]job, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Jobs)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Descriptor and resolver errors already name the addon.
			a, err := catalog.Lookup(name)
			if err != nil {
				return err
			}
			arc, err := b.archive(catalog, a)
			if err != nil {
				return err
			}
			jobs[i] = job{addon: a, archive: arc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Category ids and manifest order follow discovery order whatever the
	// completion order of the archive jobs was.
	reg := category.NewRegistry()
	mb := manifest.NewBuilder()
	result := &Result{Archives: make([]Archive, 0, len(jobs))}
	for i, j := range jobs {
		a := j.addon
		id := reg.GetOrAssign(category.ClassFor(a.IsProject()), a.Category())

		icon, err := b.copyIcon(a)
		if err != nil {
			return nil, fmt.Errorf("addon %q: %w", a.Name, err)
		}
		if icon == addon.DefaultIconFileName {
			result.DefaultIconUsed = true
		}

		d := a.Descriptor
		mb.Add(i, manifest.Entry{
			Name:         d.Name,
			Version:      d.Version,
			Description:  d.Description,
			ZipPath:      a.Name + ZipExtension,
			Category:     a.Category(),
			CategoryID:   id,
			GodotVersion: d.GodotVersion,
			Icon:         icon,
		})
		result.Archives = append(result.Archives, j.archive)
	}

	if result.DefaultIconUsed {
		if err := b.writeDefaultIcon(); err != nil {
			return nil, err
		}
	}

	result.Manifest, result.Categories = mb.Build(reg)
	if err := manifest.Write(b.opts.OutputDir, result.Manifest, result.Categories); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	b.logger.Info("build complete",
		"addons", len(result.Manifest),
		"output", b.opts.OutputDir,
		"took", result.Duration.Round(time.Millisecond))
	return result, nil
}

// OpenCatalog returns the catalog of addonsDir. An output directory directly
// under the addons root is excluded from discovery. One nested deeper would
// end up inside an addon's own files and is rejected.
func OpenCatalog(addonsDir, outputDir string) (*addon.Catalog, error) {
	catalog, err := addon.NewCatalog(addonsDir)
	if err != nil {
		return nil, err
	}
	rel, ok := outputWithin(addonsDir, outputDir)
	if !ok {
		return catalog, nil
	}
	if strings.Contains(rel, "/") {
		return nil, fmt.Errorf("%w: output directory %s lies inside addon directory %s",
			addon.ErrConfiguration, outputDir, filepath.Join(addonsDir, strings.SplitN(rel, "/", 2)[0]))
	}
	catalog.Exclude(rel)
	return catalog, nil
}

// archive resolves a and writes <name>.zip, removing the partial file on
// failure.
func (b *Builder) archive(catalog *addon.Catalog, a *addon.Addon) (Archive, error) {
	rules, err := resolver.New(catalog).Resolve(a)
	if err != nil {
		return Archive{}, err
	}

	path := filepath.Join(b.opts.OutputDir, a.Name+ZipExtension)
	zw, err := archive.CreateZip(path)
	if err != nil {
		return Archive{}, fmt.Errorf("%w: addon %q: %w", addon.ErrIO, a.Name, err)
	}

	asm := archive.NewAssembler(b.logger.With("addon", a.Name))
	stats, err := asm.Assemble(zw, rules)
	if err != nil {
		if abortErr := zw.Abort(); abortErr != nil {
			b.logger.Warn("removing partial archive", "path", path, "err", abortErr)
		}
		return Archive{}, fmt.Errorf("addon %q: %w", a.Name, err)
	}

	arc := Archive{Addon: a.Name, Path: path, Stats: stats}
	if info, err := os.Stat(path); err == nil {
		arc.Size = info.Size()
	}
	b.logger.Info("archived",
		"addon", a.Name,
		"files", stats.Files,
		"size", humanize.Bytes(uint64(arc.Size)))
	if stats.EmptyRules > 0 {
		b.logger.Debug("rules matched nothing", "addon", a.Name, "rules", stats.EmptyRules)
	}
	return arc, nil
}

// copyIcon copies the declared icon to <name>_icon.png and returns the
// manifest icon name. A missing, undeclared or out-of-tree icon falls back
// to DefaultIcon.png.
func (b *Builder) copyIcon(a *addon.Addon) (string, error) {
	rel := a.Descriptor.Icon
	if rel == "" {
		b.logger.Debug("no icon declared, using default", "addon", a.Name)
		return addon.DefaultIconFileName, nil
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		b.logger.Warn("icon outside addon directory, using default", "addon", a.Name, "icon", rel)
		return addon.DefaultIconFileName, nil
	}

	src := filepath.Join(a.Dir, filepath.FromSlash(rel))
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		b.logger.Warn("icon not found, using default", "addon", a.Name, "icon", rel)
		return addon.DefaultIconFileName, nil
	}

	name := a.Name + IconSuffix
	if err := copyFile(src, filepath.Join(b.opts.OutputDir, name)); err != nil {
		return "", fmt.Errorf("%w: copy icon: %w", addon.ErrIO, err)
	}
	return name, nil
}

// writeDefaultIcon writes DefaultIcon.png from the configured file or the
// built-in icon.
func (b *Builder) writeDefaultIcon() error {
	dst := filepath.Join(b.opts.OutputDir, addon.DefaultIconFileName)
	if b.opts.DefaultIcon == "" {
		if err := os.WriteFile(dst, addon.DefaultIcon, 0o644); err != nil {
			return fmt.Errorf("%w: write default icon: %w", addon.ErrIO, err)
		}
		return nil
	}

	if err := copyFile(b.opts.DefaultIcon, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: default icon %s does not exist", addon.ErrConfiguration, b.opts.DefaultIcon)
		}
		return fmt.Errorf("%w: copy default icon: %w", addon.ErrIO, err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
