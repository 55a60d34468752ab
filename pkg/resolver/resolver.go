// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/addonpack/addonpack/internal/dag"
	"github.com/addonpack/addonpack/pkg/addon"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

type (
	// Catalog is the addon lookup the resolver needs. *addon.Catalog
	// implements it.
	Catalog interface {
		Lookup(name string) (*addon.Addon, error)
		Names() ([]string, error)
	}

	// Resolver turns addons into inclusion rules.
	Resolver struct {
		catalog Catalog
	}

	// resolution is the state of one Resolve call.
	resolution struct {
		root *addon.Addon
		// subtrees caches the rules contributed below an addon; they depend
		// only on the root name, which is fixed for one call.
		subtrees map[string][]InclusionRule
		// the current chain of addon names, for cycle reporting
		path []string
	}
)

func New(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the rules for root: first its own files, then one rule
// per dependency edge, depth-first in declaration order. A missing
// dependency yields *DependencyNotFoundError; a cycle yields
// addon.ErrConfiguration wrapping *dag.CycleError.
//
// An exact duplicate rule reached through several paths is kept only at its
// last position, so later rules still overwrite earlier ones exactly as in
// the full edge sequence.
func (r *Resolver) Resolve(root *addon.Addon) ([]InclusionRule, error) {
	res := &resolution{
		root:     root,
		subtrees: make(map[string][]InclusionRule),
	}
	rules := []InclusionRule{{
		SourceDir:         root.Dir,
		Pattern:           AllFiles,
		DestinationPrefix: root.Name,
		Ignore:            ignoreList(root.Descriptor),
	}}

	below, err := r.expand(res, root)
	if err != nil {
		return nil, err
	}
	return keepLast(append(rules, below...)), nil
}

// expand returns the rules of every dependency edge below a.
func (r *Resolver) expand(res *resolution, a *addon.Addon) ([]InclusionRule, error) {
	if rules, ok := res.subtrees[a.Name]; ok {
		return rules, nil
	}

	res.path = append(res.path, a.Name)
	defer func() { res.path = res.path[:len(res.path)-1] }()

	var rules []InclusionRule
	for _, entry := range a.Descriptor.Dependencies {
		name, sub := SplitDependency(entry)

		if i := slices.Index(res.path, name); i >= 0 {
			cycle := append(slices.Clone(res.path[i:]), name)
			return nil, fmt.Errorf("%w: %w", addon.ErrConfiguration, &dag.CycleError{Cycle: cycle})
		}

		dep, err := r.lookup(a.Name, entry, name)
		if err != nil {
			return nil, err
		}

		rule, err := dependencyRule(dep, sub, res.root.Name)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)

		below, err := r.expand(res, dep)
		if err != nil {
			return nil, err
		}
		rules = append(rules, below...)
	}
	res.subtrees[a.Name] = rules
	return rules, nil
}

func (r *Resolver) lookup(owner, entry, name string) (*addon.Addon, error) {
	dep, err := r.catalog.Lookup(name)
	if err == nil {
		return dep, nil
	}

	var nf *addon.NotFoundError
	if errors.As(err, &nf) {
		return nil, &DependencyNotFoundError{
			Addon:       owner,
			Dependency:  entry,
			Suggestions: r.suggest(name),
		}
	}
	return nil, fmt.Errorf("addon %q: dependency %q: %w", owner, entry, err)
}

// suggest returns up to maxSuggestions known addon names fuzzy-matching name.
func (r *Resolver) suggest(name string) []string {
	names, err := r.catalog.Names()
	if err != nil || name == "" {
		return nil
	}

	var out []string
	for _, m := range fuzzy.Find(name, names) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	if len(out) == 0 {
		// A name with extra characters ("UIKitt") is not a fuzzy source of
		// "UIKit"; match the other way round.
		for _, n := range names {
			if len(fuzzy.Find(n, []string{name})) > 0 {
				out = append(out, n)
			}
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// keepLast drops every rule that reappears later in rules.
func keepLast(rules []InclusionRule) []InclusionRule {
	last := make(map[string]int, len(rules))
	for i, rule := range rules {
		last[rule.key()] = i
	}
	out := make([]InclusionRule, 0, len(last))
	for i, rule := range rules {
		if last[rule.key()] == i {
			out = append(out, rule)
		}
	}
	return out
}

// SplitDependency splits a dependency entry into the addon name and the
// slash-separated sub-path within it ("" for the whole addon).
func SplitDependency(entry string) (name, sub string) {
	cleaned := path.Clean(filepath.ToSlash(entry))
	cleaned = strings.TrimPrefix(cleaned, "/")
	name, sub, _ = strings.Cut(cleaned, "/")
	return name, sub
}

// dependencyRule builds the rule contributing dep's files under sub.
func dependencyRule(dep *addon.Addon, sub, rootName string) (InclusionRule, error) {
	rule := InclusionRule{
		SourceDir:         dep.Dir,
		Pattern:           AllFiles,
		DestinationPrefix: rootName,
		Ignore:            ignoreList(dep.Descriptor),
	}
	if sub == "" || sub == "." {
		return rule, nil
	}
	if sub == ".." || strings.HasPrefix(sub, "../") {
		return InclusionRule{}, fmt.Errorf("%w: dependency path %q of %q escapes the addon directory",
			addon.ErrConfiguration, sub, dep.Name)
	}

	if hasMeta(sub) {
		if !doublestar.ValidatePattern(sub) {
			return InclusionRule{}, fmt.Errorf("%w: invalid dependency pattern %q of %q",
				addon.ErrConfiguration, sub, dep.Name)
		}
		base, _ := doublestar.SplitPattern(sub)
		if base == "." {
			base = ""
		}
		rule.Pattern = sub
		rule.Base = base
		return rule, nil
	}

	info, err := os.Stat(filepath.Join(dep.Dir, filepath.FromSlash(sub)))
	if err == nil && info.IsDir() {
		rule.Pattern = sub + "/" + AllFiles
		rule.Base = sub
		return rule, nil
	}
	// A file, or nothing at all: the latter matches zero files.
	rule.Pattern = sub
	if dir := path.Dir(sub); dir != "." {
		rule.Base = dir
	}
	return rule, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[{\`)
}

// ignoreList is the descriptor file plus the addon's own ignore patterns.
func ignoreList(d *addon.Descriptor) []string {
	return append([]string{addon.DescriptorFileName}, d.Ignore...)
}
