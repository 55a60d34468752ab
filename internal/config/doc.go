// SPDX-License-Identifier: MPL-2.0

// Package config loads addonpack settings with Viper, using CUE as the file
// format.
//
// Sources, lowest precedence first: built-in defaults, the CUE file
// (--config, else ./addonpack.cue, else <user config dir>/addonpack/config.cue),
// ADDONPACK_* environment variables (ADDONPACK_BUILD_JOBS=4), and finally
// command-line flags applied by the caller. Files are validated against the
// embedded config_schema.cue before they are merged.
package config
