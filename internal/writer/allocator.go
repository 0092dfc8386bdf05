package writer

import "fmt"

// Allocator hands out byte ranges at the end of a file being built, and
// only there: a zup archive is produced by a single forward pass over
// its input tree (§4.2, §5), so there is never freed space to reuse and
// never a reason to allocate anywhere but the current end of file.
type Allocator struct {
	nextOffset uint64
}

// NewAllocator starts an allocator at initialOffset. For a zup archive
// this is always 0: the superblock is written last, so node payloads
// are appended starting at the beginning of the file.
func NewAllocator(initialOffset uint64) *Allocator {
	return &Allocator{nextOffset: initialOffset}
}

// Allocate reserves size bytes at the current end of file and advances
// it, returning the address of the reserved block. size must be > 0;
// the writer stores empty payloads without allocating (see packer.storeNew).
func (a *Allocator) Allocate(size uint64) (uint64, error) {
	if size == 0 {
		return 0, fmt.Errorf("writer: cannot allocate zero bytes")
	}
	addr := a.nextOffset
	a.nextOffset = addr + size
	return addr, nil
}

// EndOfFile returns the current end-of-file address: where the next
// allocation will land, and the archive's size so far.
func (a *Allocator) EndOfFile() uint64 {
	return a.nextOffset
}
