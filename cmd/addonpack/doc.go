// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the addonpack command tree.
package cmd
