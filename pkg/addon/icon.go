// SPDX-License-Identifier: MPL-2.0

package addon

import _ "embed"

// DefaultIconFileName is the shared fallback icon written next to the archives.
const DefaultIconFileName = "DefaultIcon.png"

// DefaultIcon is the built-in fallback icon, used when no icon file is configured.
//
//go:embed DefaultIcon.png
var DefaultIcon []byte
