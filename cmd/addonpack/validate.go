// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/addonpack/addonpack/internal/build"
	"github.com/addonpack/addonpack/internal/dag"
	"github.com/addonpack/addonpack/pkg/addon"
	"github.com/addonpack/addonpack/pkg/resolver"
)

func newValidateCommand(app *App) *cobra.Command {
	var addonsDir string

	cmd := &cobra.Command{
		Use:   "validate [addon...]",
		Short: "Check descriptors and dependencies without building",
		Long: `Check the descriptors and dependencies of the named addons, or of every
addon when none is named. Non-semantic versions are reported as warnings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := app.effectiveConfig().AddonsDir
			if cmd.Flags().Changed("addons") {
				dir = addonsDir
			}
			return runValidate(app, dir, args)
		},
	}
	cmd.Flags().StringVarP(&addonsDir, "addons", "a", "", "addons root (default from config: addons)")
	return cmd
}

func runValidate(app *App, dir string, names []string) error {
	if err := checkAddonsDir(dir); err != nil {
		return err
	}
	catalog, err := build.OpenCatalog(dir, app.effectiveConfig().OutputDir)
	if err != nil {
		return err
	}
	all := len(names) == 0
	if all {
		if names, err = catalog.Names(); err != nil {
			return err
		}
	}

	w := app.stdout
	var (
		firstErr error
		failed   int
		warnings int
	)
	r := resolver.New(catalog)
	for _, name := range names {
		a, err := catalog.Lookup(name)
		if err == nil {
			_, err = r.Resolve(a)
		}
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(w, "%s %s %s\n", ErrorStyle.Render(failIcon), CmdStyle.Render(name), formatErrorForDisplay(err, app.verbose))
			continue
		}

		fmt.Fprintf(w, "%s %s %s\n", SuccessStyle.Render(successIcon), CmdStyle.Render(name),
			SubtitleStyle.Render(fmt.Sprintf("%s %s", a.Descriptor.Name, a.Descriptor.Version)))
		for _, warn := range a.Descriptor.Warnings() {
			warnings++
			fmt.Fprintf(w, "  %s %s\n", WarningStyle.Render(warnIcon), warn)
		}
	}

	// Packaging order of the whole tree.
	if all && failed == 0 {
		if err := checkGraph(catalog); err != nil {
			failed++
			firstErr = err
			fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render(failIcon), err)
		}
	}

	fmt.Fprintln(w)
	if failed > 0 {
		return fmt.Errorf("%d of %d addon(s) invalid: %w", failed, len(names), firstErr)
	}
	fmt.Fprintf(w, "%s %d addon(s) valid, %d warning(s)\n", SuccessStyle.Render(successIcon), len(names), warnings)
	return nil
}

func checkGraph(catalog *addon.Catalog) error {
	g, err := resolver.Graph(catalog)
	if err != nil {
		return err
	}
	if _, err := g.TopologicalSort(); err != nil {
		var ce *dag.CycleError
		if errors.As(err, &ce) {
			return fmt.Errorf("%w: %w", addon.ErrConfiguration, err)
		}
		return err
	}
	return nil
}
