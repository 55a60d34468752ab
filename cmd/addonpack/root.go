// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// skipConfigAnnotation marks commands that run without loading configuration.
const skipConfigAnnotation = "addonpack/skip-config"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "addonpack",
		Short: "Package Godot addons into zip archives with a manifest",
		Long: TitleStyle.Render("addonpack") + SubtitleStyle.Render(" - package Godot addons for distribution") + `

addonpack turns every directory of an addons root into <name>.zip, folds the
files of declared dependencies into each archive and writes manifest.json and
categories.json describing the result.

` + SubtitleStyle.Render("Examples:") + `
  addonpack build                   Build every addon under ./addons
  addonpack build --jobs 4 --watch  Build in parallel and rebuild on change
  addonpack validate                Check every descriptor and dependency
  addonpack deps UIKit              Show what goes into UIKit.zip
  addonpack create Widgets          Scaffold a new addon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigAnnotation] != "" {
				app.verbose = flags.verbose
				return nil
			}
			return app.loadConfig(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ./addonpack.cue, then the user config directory)")

	rootCmd.AddCommand(
		newBuildCommand(app),
		newValidateCommand(app),
		newDepsCommand(app),
		newCreateCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// versionString returns a formatted version string for display.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return Run(context.Background(), NewApp(Dependencies{}), os.Args[1:])
}

// Run executes the command tree for args and returns the exit code.
func Run(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			app.renderError(w, err)
		}),
	)
	return exitCode(err)
}
