// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/term"

	"github.com/addonpack/addonpack/internal/config"
	"github.com/addonpack/addonpack/internal/dag"
	"github.com/addonpack/addonpack/internal/issue"
	"github.com/addonpack/addonpack/pkg/addon"
	"github.com/addonpack/addonpack/pkg/resolver"
)

const (
	opOpenAddonsDir = "open addons directory"
	opLoadConfig    = "load configuration"
	opValidateCfg   = "validate configuration"
)

// classifyError maps an error to its issue catalog entry (0 when none fits)
// and the process exit code.
func classifyError(err error) (issue.Id, int) {
	var (
		exitErr     *ExitError
		actionable  *issue.ActionableError
		cycle       *dag.CycleError
		depNotFound *resolver.DependencyNotFoundError
		missing     *addon.MissingFieldError
		invalid     *addon.DescriptorError
	)

	if errors.As(err, &actionable) {
		switch actionable.Operation {
		case opOpenAddonsDir:
			return issue.AddonsDirNotFoundId, ExitIO
		case opLoadConfig, opValidateCfg:
			return issue.ConfigLoadFailedId, ExitConfiguration
		}
	}

	switch {
	case err == nil:
		return 0, ExitSuccess
	case errors.As(err, &cycle):
		return issue.DependencyCycleId, ExitConfiguration
	case errors.As(err, &depNotFound):
		return issue.DependencyNotFoundId, ExitConfiguration
	case errors.As(err, &missing):
		return issue.MissingFieldId, ExitConfiguration
	case errors.Is(err, addon.ErrDescriptorNotFound):
		return issue.DescriptorNotFoundId, ExitConfiguration
	case errors.As(err, &invalid):
		return issue.DescriptorInvalidId, ExitConfiguration
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId, ExitConfiguration
	case errors.Is(err, addon.ErrConfiguration):
		return 0, ExitConfiguration
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId, ExitIO
	case errors.Is(err, addon.ErrIO):
		return issue.ArchiveWriteFailedId, ExitIO
	case errors.As(err, &exitErr):
		return 0, exitErr.Code
	}
	return 0, ExitFailure
}

// exitCode returns the process exit code for the result of a command.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return exitErr.Code
	}
	_, code := classifyError(err)
	return code
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// list their suggestions; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	var dnf *resolver.DependencyNotFoundError
	if errors.As(err, &dnf) && len(dnf.Suggestions) > 0 {
		msg := err.Error() + "\n"
		for _, s := range dnf.Suggestions {
			msg += "\n  " + infoIcon + " did you mean " + CmdStyle.Render(s) + "?"
		}
		return msg
	}
	return err.Error()
}

// renderError prints err and, when one fits, the matching issue catalog page.
func (a *App) renderError(w io.Writer, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose))

	id, _ := classifyError(err)
	if id == 0 {
		return
	}
	page := issue.Get(id)
	if page == nil {
		return
	}
	rendered, renderErr := page.Render(a.glamourStyle(w))
	if renderErr != nil {
		a.logger().Warn("failed to render issue catalog entry", "issue", id, "err", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// glamourStyle picks the markdown style for w: plain text off a terminal,
// otherwise the configured color scheme.
func (a *App) glamourStyle(w io.Writer) string {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "notty"
	}
	switch a.effectiveConfig().UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// addonsDirError reports a missing or unusable addons root.
func addonsDirError(dir string, err error) error {
	return issue.NewErrorContext().
		WithOperation(opOpenAddonsDir).
		WithResource(dir).
		WithSuggestions(
			"Pass the addons root with --addons or set addons_dir in addonpack.cue",
			"Run 'addonpack create <name> --addons "+dir+"' to start a new addons root",
		).
		Wrap(fmt.Errorf("%w: %w", addon.ErrIO, err)).
		BuildError()
}

// checkAddonsDir verifies that dir exists and is a directory.
func checkAddonsDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return addonsDirError(dir, err)
	}
	if !info.IsDir() {
		return addonsDirError(dir, fmt.Errorf("%s is not a directory", dir))
	}
	return nil
}
