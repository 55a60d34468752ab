// SPDX-License-Identifier: MPL-2.0

package archive

import "errors"

// recordingWriter keeps entries in memory.
type recordingWriter struct {
	entries   [][2]string
	finalized bool
	failOn    string
}

func (w *recordingWriter) AddEntry(src, dest string) error {
	if dest == w.failOn {
		return errors.New("disk full")
	}
	w.entries = append(w.entries, [2]string{src, dest})
	return nil
}

func (w *recordingWriter) Finalize() error {
	w.finalized = true
	return nil
}

func (w *recordingWriter) destinations() []string {
	out := make([]string, 0, len(w.entries))
	for _, e := range w.entries {
		out = append(out, e[1])
	}
	return out
}
