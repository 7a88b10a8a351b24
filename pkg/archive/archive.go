// Package archive assembles in-memory ZIP bundles for export downloads.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Builder accumulates named files and renders them as a single ZIP archive.
type Builder struct {
	buf *bytes.Buffer
	zw  *zip.Writer
	err error
	n   int
}

// NewBuilder creates an empty archive builder
func NewBuilder() *Builder {
	buf := &bytes.Buffer{}
	return &Builder{buf: buf, zw: zip.NewWriter(buf)}
}

// Add appends one file to the archive. Errors are sticky and surfaced by
// Bytes.
func (b *Builder) Add(name string, data []byte) {
	if b.err != nil {
		return
	}
	w, err := b.zw.Create(name)
	if err != nil {
		b.err = fmt.Errorf("failed to add %s to archive: %w", name, err)
		return
	}
	if _, err := w.Write(data); err != nil {
		b.err = fmt.Errorf("failed to write %s to archive: %w", name, err)
		return
	}
	b.n++
}

// Len returns the number of files added so far
func (b *Builder) Len() int {
	return b.n
}

// Bytes finalizes the archive and returns its content
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return b.buf.Bytes(), nil
}
