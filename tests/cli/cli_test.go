// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// The addonpack command runs in-process through testscript.Main, so the
// scripts exercise the real command tree, configuration lookup and exit
// codes without building a binary first.
package cli

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/addonpack/addonpack/cmd/addonpack"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"addonpack": func() { os.Exit(cmd.Execute()) },
	})
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			// Keep the host's user configuration out of the scripts.
			env.Setenv("XDG_CONFIG_HOME", env.WorkDir+"/.config")
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}
