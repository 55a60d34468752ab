// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/addonpack/addonpack/internal/build"
)

type buildFlagValues struct {
	addonsDir   string
	outputDir   string
	defaultIcon string
	jobs        int
	watch       bool
}

func newBuildCommand(app *App) *cobra.Command {
	flags := &buildFlagValues{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build every addon into a zip and write the manifest",
		Long: `Build every addon of the addons root.

Each addon directory becomes <name>.zip with its files under <name>/, plus the
files of its dependencies. Icons are copied as <name>_icon.png; addons without
one share DefaultIcon.png. manifest.json and categories.json are written last,
and only when every addon succeeded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.addonsDir, "addons", "a", "", "addons root (default from config: addons)")
	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "output directory (default from config: build)")
	cmd.Flags().StringVar(&flags.defaultIcon, "default-icon", "", "icon file used for addons without one (default: built-in icon)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of archives built in parallel (default from config: 1)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild whenever the addons root changes")

	return cmd
}

// buildOptions merges flags over the loaded configuration.
func buildOptions(cmd *cobra.Command, app *App, flags *buildFlagValues) build.Options {
	cfg := app.effectiveConfig()
	opts := build.Options{
		AddonsDir:   cfg.AddonsDir,
		OutputDir:   cfg.OutputDir,
		DefaultIcon: cfg.DefaultIcon,
		Jobs:        cfg.Build.Jobs,
		Logger:      app.logger(),
	}
	if cmd.Flags().Changed("addons") {
		opts.AddonsDir = flags.addonsDir
	}
	if cmd.Flags().Changed("output") {
		opts.OutputDir = flags.outputDir
	}
	if cmd.Flags().Changed("default-icon") {
		opts.DefaultIcon = flags.defaultIcon
	}
	if cmd.Flags().Changed("jobs") {
		opts.Jobs = flags.jobs
	}
	return opts
}

func runBuild(cmd *cobra.Command, app *App, flags *buildFlagValues) error {
	if cmd.Flags().Changed("jobs") && flags.jobs < 1 {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("--jobs must be at least 1, got %d", flags.jobs)}
	}

	opts := buildOptions(cmd, app, flags)
	if err := checkAddonsDir(opts.AddonsDir); err != nil {
		return err
	}
	builder := build.New(opts)

	if !flags.watch {
		res, err := builder.Run(cmd.Context())
		if err != nil {
			return err
		}
		printBuildResult(app, res)
		return nil
	}

	cfg := app.effectiveConfig()
	fmt.Fprintf(app.stdout, "%s Watching %s (Ctrl+C to stop)\n", VerboseStyle.Render("→"), CmdStyle.Render(opts.AddonsDir))
	return builder.Watch(cmd.Context(), build.WatchOptions{
		Debounce: cfg.Watch.Debounce,
		Ignore:   cfg.Watch.Ignore,
		OnResult: func(res *build.Result, err error) {
			if err != nil {
				app.renderError(app.stderr, err)
				return
			}
			printBuildResult(app, res)
		},
	})
}

func printBuildResult(app *App, res *build.Result) {
	w := app.stdout
	for _, arc := range res.Archives {
		fmt.Fprintf(w, "%s %s %s\n",
			SuccessStyle.Render(successIcon),
			CmdStyle.Render(arc.Addon+build.ZipExtension),
			SubtitleStyle.Render(fmt.Sprintf("(%d files, %s)", arc.Stats.Files, humanize.Bytes(uint64(arc.Size)))))
	}
	if res.DefaultIconUsed {
		fmt.Fprintf(w, "%s %s\n", infoIcon, VerboseStyle.Render("default icon written"))
	}
	fmt.Fprintf(w, "\n%s Built %d addon(s) in %s\n",
		SuccessStyle.Render(successIcon),
		len(res.Manifest),
		res.Duration.Round(time.Millisecond))
}
