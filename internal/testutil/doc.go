// SPDX-License-Identifier: MPL-2.0

// Package testutil builds addon trees on disk and inspects the archives
// produced from them. Helpers fail the test immediately on error.
package testutil
