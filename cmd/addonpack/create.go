// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/addonpack/addonpack/internal/tui"
	"github.com/addonpack/addonpack/pkg/addon"
)

type createFlagValues struct {
	addonsDir    string
	category     string
	project      bool
	godotVersion string
	version      string
	description  string
	icon         string
	interactive  bool
}

func newCreateCommand(app *App) *cobra.Command {
	flags := &createFlagValues{}

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Scaffold a new addon",
		Long: `Create <addons>/<name>/ with an addon.json and an Icon.png.

Without a name, or with --interactive, the fields are asked for in a form.

Examples:
  addonpack create Widgets
  addonpack create Starter --project --category Templates
  addonpack create --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, app, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.addonsDir, "addons", "a", "", "addons root (default from config: addons)")
	cmd.Flags().StringVarP(&flags.category, "category", "c", "", "category (default "+addon.DefaultCategory+")")
	cmd.Flags().BoolVar(&flags.project, "project", false, "mark the addon as a project template")
	cmd.Flags().StringVar(&flags.godotVersion, "godot-version", addon.DefaultGodotVersion, "minimum Godot version")
	cmd.Flags().StringVar(&flags.version, "version", addon.DefaultVersion, "addon version")
	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "description (default: the name)")
	cmd.Flags().StringVar(&flags.icon, "icon", "", "PNG copied to Icon.png (default: built-in icon)")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "prompt for every field")

	return cmd
}

func runCreate(cmd *cobra.Command, app *App, flags *createFlagValues, args []string) error {
	root := app.effectiveConfig().AddonsDir
	if cmd.Flags().Changed("addons") {
		root = flags.addonsDir
	}

	opts := addon.ScaffoldOptions{
		IsProject:    flags.project,
		Description:  flags.description,
		Category:     flags.category,
		GodotVersion: flags.godotVersion,
		Version:      flags.version,
	}
	if len(args) == 1 {
		opts.Name = args[0]
	}
	if flags.icon != "" {
		data, err := os.ReadFile(flags.icon)
		if err != nil {
			return fmt.Errorf("%w: read icon: %w", addon.ErrIO, err)
		}
		opts.Icon = data
	}

	if flags.interactive || opts.Name == "" {
		if !flags.interactive && !tui.IsInputTerminal() {
			return &ExitError{Code: ExitFailure, Err: errors.New("an addon name is required when not running in a terminal")}
		}
		cfg := tui.DefaultConfig()
		cfg.Input = app.stdin
		completed, err := tui.NewCreateForm(cfg, knownCategories(root)).Run(opts)
		if err != nil {
			return err
		}
		opts = completed
	}

	dir, err := addon.Scaffold(root, opts)
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Create Addon"))
	fmt.Fprintf(w, "%s Addon created successfully\n\n", SuccessStyle.Render(successIcon))
	fmt.Fprintf(w, "%s Path: %s\n", infoIcon, CmdStyle.Render(dir))
	fmt.Fprintf(w, "%s Name: %s\n", infoIcon, CmdStyle.Render(opts.Name))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s Next steps:\n", infoIcon)
	fmt.Fprintf(w, "   1. Add your files to %s\n", CmdStyle.Render(dir))
	fmt.Fprintf(w, "   2. List dependencies in %s\n", CmdStyle.Render(filepath.Join(dir, addon.DescriptorFileName)))
	fmt.Fprintf(w, "   3. Run %s\n", CmdStyle.Render("addonpack validate "+opts.Name))
	return nil
}

// knownCategories returns the categories used under root, for suggestions.
// Unreadable addons are skipped.
func knownCategories(root string) []string {
	catalog, err := addon.NewCatalog(root)
	if err != nil {
		return nil
	}
	names, err := catalog.Names()
	if err != nil {
		return nil
	}
	var categories []string
	for _, name := range names {
		a, err := catalog.Lookup(name)
		if err != nil {
			continue
		}
		if c := a.Category(); !slices.Contains(categories, c) {
			categories = append(categories, c)
		}
	}
	slices.Sort(categories)
	return categories
}
