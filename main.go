// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	"github.com/addonpack/addonpack/cmd/addonpack"
)

func main() {
	os.Exit(cmd.Execute())
}
