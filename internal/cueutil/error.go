// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError rewrites a CUE error so every line reads
//
//	<file>: <json-path>: <message>
//
// for example "addons/Foo/addon.json: ignore[1]: conflicting values 3 and string".
// Non-CUE errors are prefixed with the file name only.
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}

	list := errors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		location := jsonPath(errors.Path(e))
		msg := e.Error()
		if location != "" {
			// CUE sometimes repeats the path at the start of the message.
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, location), ":"))
			lines = append(lines, location+": "+msg)
			continue
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filename, strings.Join(lines, "\n  "))
}

// jsonPath turns a CUE selector list such as ["dependencies", "2"] into
// "dependencies[2]".
func jsonPath(selectors []string) string {
	var sb strings.Builder
	for i, sel := range selectors {
		if _, err := strconv.Atoi(sel); err == nil && i > 0 {
			sb.WriteString("[" + sel + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(sel)
	}
	return sb.String()
}

// CheckFileSize rejects documents larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
