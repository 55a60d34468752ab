// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"path"
	"strings"
)

// AllFiles matches every file below a directory, dotfiles included.
const AllFiles = "**/*"

// InclusionRule selects files of one addon directory for an archive.
type InclusionRule struct {
	// SourceDir is the absolute directory of the contributing addon.
	SourceDir string
	// Pattern is a doublestar glob relative to SourceDir.
	Pattern string
	// Base is the slash-separated sub-path of SourceDir that destination
	// paths are relative to. Empty means SourceDir itself.
	Base string
	// DestinationPrefix is the root addon's name.
	DestinationPrefix string
	// Ignore holds globs relative to SourceDir. A file is skipped when it or
	// one of its parent directories matches.
	Ignore []string
}

// Destination maps a matched path (slash-separated, relative to SourceDir)
// into the archive. ok is false when rel lies outside Base.
func (r InclusionRule) Destination(rel string) (dest string, ok bool) {
	if r.Base != "" {
		prefix := r.Base + "/"
		if !strings.HasPrefix(rel, prefix) {
			return "", false
		}
		rel = strings.TrimPrefix(rel, prefix)
	}
	return path.Join(r.DestinationPrefix, rel), true
}

func (r InclusionRule) key() string {
	return r.SourceDir + "\x00" + r.Pattern + "\x00" + r.Base + "\x00" + strings.Join(r.Ignore, "\x00")
}
