// Package reader implements the zup archive reader: locating the
// superblock, loading the shared dictionary, and serving random-access
// open/read calls over the directory DAG (§4.3).
package reader

import (
	"fmt"
	"os"
	"strings"

	"github.com/docserver/zuparchive/internal/layout"
	"github.com/docserver/zuparchive/internal/utils"
	"github.com/docserver/zuparchive/internal/zstdcodec"
)

// Archive is an opened, read-only zup archive. It is safe for
// concurrent Open/Read calls from multiple goroutines: all I/O is
// positional and all decoded state is local to the call (§5).
type Archive struct {
	file *os.File
	sb   layout.Superblock
	dict []byte
}

// Open reads the trailing superblock, validates it, and (if present)
// loads the shared dictionary. The returned Archive retains an open
// file handle until Close is called.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.WrapError("opening archive", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, utils.WrapError("statting archive", err)
	}
	if info.Size() < layout.SuperblockSize {
		f.Close()
		return nil, fmt.Errorf("reader: file too small to contain a superblock")
	}

	tail := make([]byte, layout.SuperblockSize)
	if _, err := f.ReadAt(tail, info.Size()-layout.SuperblockSize); err != nil {
		f.Close()
		return nil, utils.WrapError("reading superblock", err)
	}

	sb, err := layout.DecodeSuperblock(tail)
	if err != nil {
		f.Close()
		return nil, err
	}

	a := &Archive{file: f, sb: sb}

	if !sb.Dict.IsZero() {
		dict, err := a.readRange(sb.Dict)
		if err != nil {
			f.Close()
			return nil, utils.WrapError("reading dictionary", err)
		}
		a.dict = dict
	}

	return a, nil
}

// Close releases the underlying file handle.
func (a *Archive) Close() error {
	return a.file.Close()
}

// Root returns the archive's root directory node.
func (a *Archive) Root() layout.Node {
	return a.sb.Root
}

func (a *Archive) readRange(r layout.Range) ([]byte, error) {
	if r.Len > MaxRangeBytes {
		return nil, ErrRangeTooLarge
	}
	buf := make([]byte, r.Len)
	if r.Len == 0 {
		return buf, nil
	}
	if _, err := a.file.ReadAt(buf, int64(r.Offset)); err != nil {
		return nil, utils.WrapError("reading range", err)
	}
	return buf, nil
}

// ReadNode returns the decoded logical payload of n: the raw bytes for
// a file node, or the raw (still-encoded) directory listing bytes for
// a directory node.
func (a *Archive) ReadNode(n layout.Node) ([]byte, error) {
	raw, err := a.readRange(n.Range)
	if err != nil {
		return nil, err
	}

	if !n.Compressed() {
		return raw, nil
	}
	if a.dict == nil && len(raw) > 0 {
		return nil, ErrMissingDictionary
	}
	return zstdcodec.Decompress(raw, a.dict)
}

// Listing decodes n's payload as a directory listing. The caller must
// already know n.Dir() is true.
func (a *Archive) Listing(n layout.Node) ([]layout.Entry, error) {
	payload, err := a.ReadNode(n)
	if err != nil {
		return nil, err
	}
	entries, err := layout.DecodeListing(payload)
	if err != nil {
		if strings.Contains(err.Error(), "UTF-8") {
			return nil, ErrBadName
		}
		return nil, err
	}
	return entries, nil
}

// Open resolves a '/'-separated, slash-split path from the root,
// requiring every intermediate segment to be a directory. It returns
// the final segment's Node, whether that names a file or a directory.
func (a *Archive) Open(segments []string) (layout.Node, error) {
	cur := a.sb.Root
	for _, seg := range segments {
		if !cur.Dir() {
			return layout.Node{}, ErrNotADirectory
		}
		entries, err := a.Listing(cur)
		if err != nil {
			return layout.Node{}, err
		}
		found, ok := lookup(entries, seg)
		if !ok {
			return layout.Node{}, ErrNotFound
		}
		cur = found
	}
	return cur, nil
}

// lookup finds seg within entries, which are assumed sorted but may be
// scanned linearly (§4.3 "Directory iteration").
func lookup(entries []layout.Entry, seg string) (layout.Node, bool) {
	for _, e := range entries {
		if e.Name == seg {
			return e.Node, true
		}
	}
	return layout.Node{}, false
}

// Read resolves path and returns its file contents. It fails with
// ErrIsADirectory if path names a directory.
func (a *Archive) Read(segments []string) ([]byte, error) {
	n, err := a.Open(segments)
	if err != nil {
		return nil, err
	}
	if n.Dir() {
		return nil, ErrIsADirectory
	}
	return a.ReadNode(n)
}

// ReadDir resolves path and returns its directory entries. It fails
// with ErrNotADirectory if path names a file.
func (a *Archive) ReadDir(segments []string) ([]layout.Entry, error) {
	n, err := a.Open(segments)
	if err != nil {
		return nil, err
	}
	if !n.Dir() {
		return nil, ErrNotADirectory
	}
	return a.Listing(n)
}

// SplitPath splits a slash-separated archive path into segments,
// dropping empty segments so that "/a/b/", "a/b", and "/a//b" all
// resolve identically.
func SplitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
