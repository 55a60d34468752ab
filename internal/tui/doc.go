// SPDX-License-Identifier: MPL-2.0

// Package tui holds the interactive prompts of the CLI. Prompts are built on
// charmbracelet/huh and fall back to accessible (line based) mode when stdin
// is not a terminal.
package tui
