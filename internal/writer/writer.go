// Package writer provides the append-only file plumbing the archive
// packer builds a zup archive on top of: sequential, single-threaded
// writes of node payloads, the dictionary, and the superblock, each
// recorded as the layout.Range it ends up occupying.
package writer

import (
	"fmt"
	"os"

	"github.com/docserver/zuparchive/internal/layout"
)

// FileWriter appends data to a new archive file, tracking the next
// free offset via Allocator. Not safe for concurrent use — per §5 the
// archive writer is strictly single-threaded.
type FileWriter struct {
	file      *os.File
	allocator *Allocator
}

// NewFileWriter creates (truncating if it already exists) the archive
// file at path, ready to receive Append calls starting at offset 0.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("writer: creating %s: %w", path, err)
	}
	return &FileWriter{file: f, allocator: NewAllocator(0)}, nil
}

// Append allocates space for data at the current end of file, writes
// it there, and returns the range it now occupies. Empty data yields a
// zero-length range at the current end of file, with no allocation.
func (w *FileWriter) Append(data []byte) (layout.Range, error) {
	if w.file == nil {
		return layout.Range{}, fmt.Errorf("writer: closed")
	}
	if len(data) == 0 {
		return layout.Range{Offset: w.allocator.EndOfFile()}, nil
	}

	addr, err := w.allocator.Allocate(uint64(len(data)))
	if err != nil {
		return layout.Range{}, err
	}

	n, err := w.file.WriteAt(data, int64(addr))
	if err != nil {
		return layout.Range{}, fmt.Errorf("writer: write at %d: %w", addr, err)
	}
	if n != len(data) {
		return layout.Range{}, fmt.Errorf("writer: short write at %d: wrote %d of %d bytes", addr, n, len(data))
	}

	return layout.Range{Offset: addr, Len: uint64(len(data))}, nil
}

// EndOfFile returns the archive's size so far: the offset the next
// Append will use. Used for zero-length payloads, which are recorded
// at this offset without an allocation (see packer.storeNew).
func (w *FileWriter) EndOfFile() uint64 {
	return w.allocator.EndOfFile()
}

// Flush commits all writes to stable storage.
func (w *FileWriter) Flush() error {
	if w.file == nil {
		return fmt.Errorf("writer: closed")
	}
	return w.file.Sync()
}

// Close closes the underlying file. It does not flush first; call
// Flush before Close when durability matters.
func (w *FileWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
