// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"testing"

	"github.com/addonpack/addonpack/pkg/addon"
)

func TestHuhTheme(t *testing.T) {
	t.Parallel()

	for _, theme := range []Theme{ThemeDefault, ThemeCharm, ThemeDracula, ThemeCatppuccin, ThemeBase16, "unknown"} {
		if huhTheme(theme) == nil {
			t.Errorf("huhTheme(%q) returned nil", theme)
		}
	}
}

func TestCreateFormGroups(t *testing.T) {
	t.Parallel()

	f := NewCreateForm(Config{Theme: ThemeDefault, Accessible: true}, []string{"UI", "Tools"})
	opts := addon.ScaffoldOptions{Name: "Widgets"}.Defaults()
	groups := f.groups(&opts)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if form := newForm(f.cfg, groups...); form == nil {
		t.Fatal("newForm returned nil")
	}
}

func TestRequired(t *testing.T) {
	t.Parallel()

	check := required("version")
	if err := check("  "); err == nil || err.Error() != "version is required" {
		t.Errorf("required(blank) = %v", err)
	}
	if err := check("1.0.0"); err != nil {
		t.Errorf("required(value) = %v", err)
	}
}
