// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/addonpack/addonpack/pkg/addon"
	"github.com/addonpack/addonpack/pkg/resolver"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

type (
	// Entry is one file to archive.
	Entry struct {
		Source      string
		Destination string
	}

	// Stats summarizes one assembly.
	Stats struct {
		Rules int
		// EmptyRules matched no file, including rules whose source
		// directory does not exist.
		EmptyRules int
		Files      int
		// Overwritten counts destinations replaced by a later rule.
		Overwritten int
	}

	// Assembler turns inclusion rules into archive entries.
	Assembler struct {
		logger *log.Logger
	}
)

// NewAssembler returns an Assembler logging to logger; nil discards logs.
func NewAssembler(logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Assembler{logger: logger}
}

// Plan expands rules into entries. Entries keep the order in which their
// destination was first produced; when a later rule produces the same
// destination its source replaces the earlier one.
func (a *Assembler) Plan(rules []resolver.InclusionRule) ([]Entry, Stats, error) {
	stats := Stats{Rules: len(rules)}
	var entries []Entry
	index := make(map[string]int)

	for _, rule := range rules {
		matches, err := a.match(rule)
		if err != nil {
			return nil, stats, err
		}
		if len(matches) == 0 {
			stats.EmptyRules++
			a.logger.Debug("inclusion rule matched no files",
				"source", rule.SourceDir, "pattern", rule.Pattern)
			continue
		}

		for _, rel := range matches {
			dest, ok := rule.Destination(rel)
			if !ok {
				continue
			}
			src := filepath.Join(rule.SourceDir, filepath.FromSlash(rel))
			if i, dup := index[dest]; dup {
				if entries[i].Source != src {
					stats.Overwritten++
					a.logger.Warn("archive path overwritten by later rule",
						"path", dest, "previous", entries[i].Source, "source", src)
				}
				entries[i].Source = src
				continue
			}
			index[dest] = len(entries)
			entries = append(entries, Entry{Source: src, Destination: dest})
		}
	}

	stats.Files = len(entries)
	return entries, stats, nil
}

// Assemble plans rules, writes every entry to w and finalizes it. On error
// w is left unfinalized and the caller discards it.
func (a *Assembler) Assemble(w Writer, rules []resolver.InclusionRule) (Stats, error) {
	entries, stats, err := a.Plan(rules)
	if err != nil {
		return stats, err
	}

	for _, e := range entries {
		a.logger.Debug("adding file", "path", e.Destination)
		if err := w.AddEntry(e.Source, e.Destination); err != nil {
			return stats, fmt.Errorf("%w: %w", addon.ErrIO, err)
		}
	}
	if err := w.Finalize(); err != nil {
		return stats, fmt.Errorf("%w: %w", addon.ErrIO, err)
	}
	return stats, nil
}

// match returns the non-ignored files of rule, slash-separated and relative
// to rule.SourceDir, in lexical order.
func (a *Assembler) match(rule resolver.InclusionRule) ([]string, error) {
	info, err := os.Stat(rule.SourceDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", addon.ErrIO, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	fsys := os.DirFS(rule.SourceDir)
	matches, err := doublestar.Glob(fsys, rule.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, fmt.Errorf("%w: invalid pattern %q in %s", addon.ErrConfiguration, rule.Pattern, rule.SourceDir)
		}
		return nil, fmt.Errorf("%w: %w", addon.ErrIO, err)
	}

	kept := matches[:0]
	for _, m := range matches {
		skip, err := ignored(m, rule.Ignore)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", addon.ErrConfiguration, rule.SourceDir, err)
		}
		if !skip {
			kept = append(kept, m)
		}
	}
	slices.Sort(kept)
	return kept, nil
}

// ignored reports whether rel or one of its parent directories matches a
// pattern.
func ignored(rel string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		for p := rel; p != "." && p != "/"; p = path.Dir(p) {
			ok, err := doublestar.Match(pattern, p)
			if err != nil {
				return false, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}
