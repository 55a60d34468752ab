// SPDX-License-Identifier: MPL-2.0

// Package resolver expands an addon and its transitive dependencies into the
// inclusion rules the archive assembler consumes.
//
// Every rule carries the root addon's name as destination prefix: files of a
// dependency are folded into the root addon's namespace rather than nested
// under the dependency's own name. A dependency entry may name a whole addon
// ("UIKit"), a directory or file inside it ("UIKit/scripts"), or a glob
// ("UIKit/themes/*.tres"); paths are made relative to that sub-path.
package resolver
