// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/addonpack/addonpack/internal/build"
	"github.com/addonpack/addonpack/internal/dag"
	"github.com/addonpack/addonpack/pkg/addon"
	"github.com/addonpack/addonpack/pkg/resolver"
)

func newDepsCommand(app *App) *cobra.Command {
	var addonsDir string

	cmd := &cobra.Command{
		Use:   "deps [addon]",
		Short: "Show dependency trees and packaging order",
		Long: `Without an argument, list every addon in dependency order with its direct
dependencies. With an addon name, print its dependency tree and the inclusion
rules that make up its archive.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := app.effectiveConfig().AddonsDir
			if cmd.Flags().Changed("addons") {
				dir = addonsDir
			}
			if err := checkAddonsDir(dir); err != nil {
				return err
			}
			catalog, err := build.OpenCatalog(dir, app.effectiveConfig().OutputDir)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return printPackagingOrder(app.stdout, catalog)
			}
			return printAddonDeps(app.stdout, catalog, args[0])
		},
	}
	cmd.Flags().StringVarP(&addonsDir, "addons", "a", "", "addons root (default from config: addons)")
	return cmd
}

func printPackagingOrder(w io.Writer, catalog *addon.Catalog) error {
	g, err := resolver.Graph(catalog)
	if err != nil {
		return err
	}
	order, err := g.TopologicalSort()
	if err != nil {
		var ce *dag.CycleError
		if errors.As(err, &ce) {
			return fmt.Errorf("%w: %w", addon.ErrConfiguration, err)
		}
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Packaging order"))
	for i, name := range order {
		line := fmt.Sprintf("%3d. %s", i+1, CmdStyle.Render(name))
		if deps := g.Predecessors(name); len(deps) > 0 {
			line += SubtitleStyle.Render(" ← " + strings.Join(deps, ", "))
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func printAddonDeps(w io.Writer, catalog *addon.Catalog, name string) error {
	root, err := catalog.Lookup(name)
	if err != nil {
		return err
	}
	rules, err := resolver.New(catalog).Resolve(root)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Dependency tree"))
	fmt.Fprintln(w, CmdStyle.Render(root.Name))
	if err := printTree(w, catalog, root, "", map[string]bool{root.Name: true}); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Inclusion rules"))
	for _, rule := range rules {
		line := fmt.Sprintf("  %s %s/%s → %s/", infoIcon, filepath.Base(rule.SourceDir), rule.Pattern, rule.DestinationPrefix)
		if len(rule.Ignore) > 0 {
			line += SubtitleStyle.Render(" (ignore " + strings.Join(rule.Ignore, ", ") + ")")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// printTree prints the declared dependencies of a below prefix. An addon
// already shown on the current path is marked instead of expanded.
func printTree(w io.Writer, catalog *addon.Catalog, a *addon.Addon, prefix string, onPath map[string]bool) error {
	deps := a.Descriptor.Dependencies
	for i, entry := range deps {
		last := i == len(deps)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}

		depName, _ := resolver.SplitDependency(entry)
		if onPath[depName] {
			fmt.Fprintf(w, "%s%s%s %s\n", prefix, branch, entry, WarningStyle.Render("(cycle)"))
			continue
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, entry)

		dep, err := catalog.Lookup(depName)
		if err != nil {
			return err
		}
		onPath[depName] = true
		if err := printTree(w, catalog, dep, prefix+next, onPath); err != nil {
			return err
		}
		delete(onPath, depName)
	}
	return nil
}
