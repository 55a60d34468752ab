// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

type (
	// Writer receives archive entries. Implementations must accept
	// destinations in any order and write each destination at most once.
	Writer interface {
		AddEntry(sourcePath, destinationPath string) error
		Finalize() error
	}

	// ZipWriter writes a zip file at Path. Entries are deflated at
	// flate.BestCompression.
	ZipWriter struct {
		path string
		file *os.File
		zw   *zip.Writer
		done bool
	}
)

// ErrFinalized is returned when a ZipWriter is used after Finalize or Abort.
var ErrFinalized = errors.New("archive already finalized")

// CreateZip creates (or truncates) the zip file at path.
func CreateZip(path string) (*ZipWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create zip file: %w", err)
	}

	zw := zip.NewWriter(file)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return &ZipWriter{path: path, file: file, zw: zw}, nil
}

func (z *ZipWriter) Path() string {
	return z.path
}

// AddEntry copies the file at sourcePath into the archive under the
// slash-separated destinationPath, keeping its mode and modification time.
func (z *ZipWriter) AddEntry(sourcePath, destinationPath string) (err error) {
	if z.done {
		return ErrFinalized
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sourcePath, err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", sourcePath, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create header for %s: %w", sourcePath, err)
	}
	header.Name = filepath.ToSlash(destinationPath)
	header.Method = zip.Deflate

	w, err := z.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", destinationPath, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", destinationPath, err)
	}
	return nil
}

// Finalize writes the central directory and closes the file.
func (z *ZipWriter) Finalize() error {
	if z.done {
		return ErrFinalized
	}
	z.done = true

	zipErr := z.zw.Close()
	fileErr := z.file.Close()
	if err := errors.Join(zipErr, fileErr); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", z.path, err)
	}
	return nil
}

// Abort closes the writer if still open and removes the file. It is safe to
// call after Finalize, in which case only the removal happens.
func (z *ZipWriter) Abort() error {
	if !z.done {
		z.done = true
		_ = z.zw.Close()
		_ = z.file.Close()
	}
	if err := os.Remove(z.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove partial archive %s: %w", z.path, err)
	}
	return nil
}
