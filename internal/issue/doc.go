// SPDX-License-Identifier: MPL-2.0

// Package issue turns packaging failures into user-facing guidance.
//
// ActionableError carries the failed operation, the addon or path involved and
// remediation hints. The issue catalog maps each failure class to a Markdown
// page that the CLI renders with glamour before exiting.
package issue
