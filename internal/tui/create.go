// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/addonpack/addonpack/pkg/addon"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// CreateForm asks for the descriptor fields of a new addon. Values already
// set in opts are offered as defaults; known categories are suggested.
type CreateForm struct {
	cfg        Config
	categories []string
}

// NewCreateForm returns a form using cfg. categories are offered as
// suggestions for the category field.
func NewCreateForm(cfg Config, categories []string) *CreateForm {
	return &CreateForm{cfg: cfg, categories: categories}
}

// Run prompts for every field and returns the completed options.
func (f *CreateForm) Run(opts addon.ScaffoldOptions) (addon.ScaffoldOptions, error) {
	opts = opts.Defaults()

	form := newForm(f.cfg, f.groups(&opts)...)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return opts, ErrAborted
		}
		return opts, err
	}

	opts.Name = strings.TrimSpace(opts.Name)
	opts.Category = strings.TrimSpace(opts.Category)
	return opts, nil
}

func (f *CreateForm) groups(opts *addon.ScaffoldOptions) []*huh.Group {
	return []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Addon name").
				Description("Directory name; dependencies refer to the addon by it").
				Value(&opts.Name).
				Validate(addon.ValidateName),
			huh.NewInput().
				Title("Description").
				Value(&opts.Description).
				Validate(required("description")),
			huh.NewInput().
				Title("Category").
				Description("Leave empty for "+addon.DefaultCategory).
				Suggestions(f.categories).
				Value(&opts.Category),
			huh.NewConfirm().
				Title("Is this a project template?").
				Value(&opts.IsProject),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Version").
				Value(&opts.Version).
				Validate(required("version")),
			huh.NewInput().
				Title("Godot version").
				Value(&opts.GodotVersion).
				Validate(required("godot version")),
		),
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}
