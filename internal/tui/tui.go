// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Theme names a huh theme.
type Theme string

const (
	ThemeDefault    Theme = "default"
	ThemeCharm      Theme = "charm"
	ThemeDracula    Theme = "dracula"
	ThemeCatppuccin Theme = "catppuccin"
	ThemeBase16     Theme = "base16"
)

// Config holds common configuration for prompts.
type Config struct {
	Theme Theme
	// Accessible enables line based prompts for screen readers and pipes.
	Accessible bool
	Input      io.Reader
	Output     io.Writer
}

// DefaultConfig returns a Config for the current process. Accessible mode is
// enabled when stdin is not a terminal or ACCESSIBLE is set; prompts then go
// to stderr so they are not captured with stdout.
func DefaultConfig() Config {
	accessible := !IsInputTerminal() || os.Getenv("ACCESSIBLE") != ""

	var output io.Writer = os.Stdout
	if accessible {
		output = os.Stderr
	}
	return Config{
		Theme:      ThemeCharm,
		Accessible: accessible,
		Input:      os.Stdin,
		Output:     output,
	}
}

// IsInputTerminal reports whether stdin is connected to a terminal.
func IsInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func huhTheme(t Theme) *huh.Theme {
	switch t {
	case ThemeCharm:
		return huh.ThemeCharm()
	case ThemeDracula:
		return huh.ThemeDracula()
	case ThemeCatppuccin:
		return huh.ThemeCatppuccin()
	case ThemeBase16:
		return huh.ThemeBase16()
	default:
		return huh.ThemeBase()
	}
}

// newForm applies cfg to a form made of groups.
func newForm(cfg Config, groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).
		WithTheme(huhTheme(cfg.Theme)).
		WithAccessible(cfg.Accessible)
	if cfg.Input != nil {
		form = form.WithInput(cfg.Input)
	}
	if cfg.Output != nil {
		form = form.WithOutput(cfg.Output)
	}
	return form
}
