// Package layout provides the fixed-width, little-endian binary records
// that anchor a zup archive: Range, Node and Superblock. Encoding and
// decoding here is pure and total; no filesystem or validation beyond
// the magic/version check happens at this layer.
package layout

import (
	"encoding/binary"
	"fmt"
)

// Magic is the four-byte constant "Zup!" read as a little-endian u32.
const Magic = 0x2170755A

// Version is the only superblock version this package understands.
const Version = 1

// Flag bits for Node.Flags.
const (
	// FlagCompressed marks a node whose stored bytes are a zstd frame
	// against the archive's shared dictionary.
	FlagCompressed uint32 = 1 << 0
	// FlagDir marks a node whose logical payload is a directory listing
	// rather than an opaque file.
	FlagDir uint32 = 1 << 1
)

// Sizes, in bytes, of the fixed-width encodings below.
const (
	RangeSize      = 16
	NodeSize       = 20
	SuperblockSize = 44
)

// Range is a contiguous byte extent within an archive file.
type Range struct {
	Offset uint64
	Len    uint64
}

// IsZero reports whether r is the empty, absent range (used for a
// superblock's dictionary field when no compression was used).
func (r Range) IsZero() bool {
	return r.Offset == 0 && r.Len == 0
}

// Encode writes the fixed 16-byte little-endian encoding of r into dst.
// dst must be at least RangeSize bytes.
func (r Range) Encode(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], r.Offset)
	binary.LittleEndian.PutUint64(dst[8:16], r.Len)
}

// DecodeRange decodes a Range from the first RangeSize bytes of src.
func DecodeRange(src []byte) (Range, error) {
	if len(src) < RangeSize {
		return Range{}, fmt.Errorf("layout: range needs %d bytes, got %d", RangeSize, len(src))
	}
	return Range{
		Offset: binary.LittleEndian.Uint64(src[0:8]),
		Len:    binary.LittleEndian.Uint64(src[8:16]),
	}, nil
}

// Node references a stored, possibly-compressed blob: a directory
// listing or an opaque file. A Node is immutable once written and is
// identified structurally by the SHA-256 of its logical payload, which
// this package does not itself compute (see the packer package).
type Node struct {
	Flags uint32
	Range Range
}

// Compressed reports whether the node's payload is zstd-framed.
func (n Node) Compressed() bool { return n.Flags&FlagCompressed != 0 }

// Dir reports whether the node's payload is a directory listing.
func (n Node) Dir() bool { return n.Flags&FlagDir != 0 }

// Encode writes the fixed 20-byte little-endian encoding of n into dst.
// dst must be at least NodeSize bytes.
func (n Node) Encode(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], n.Flags)
	n.Range.Encode(dst[4:20])
}

// DecodeNode decodes a Node from the first NodeSize bytes of src.
func DecodeNode(src []byte) (Node, error) {
	if len(src) < NodeSize {
		return Node{}, fmt.Errorf("layout: node needs %d bytes, got %d", NodeSize, len(src))
	}
	rng, err := DecodeRange(src[4:20])
	if err != nil {
		return Node{}, err
	}
	return Node{
		Flags: binary.LittleEndian.Uint32(src[0:4]),
		Range: rng,
	}, nil
}

// Superblock is the archive footer: the final SuperblockSize bytes of a
// .zup file. Layout (all little-endian):
//
//	dict    Range  16 bytes  offset 0
//	root    Node   20 bytes  offset 16
//	version uint32  4 bytes  offset 36
//	magic   uint32  4 bytes  offset 40
type Superblock struct {
	Dict    Range
	Root    Node
	Version uint32
	Magic   uint32
}

// NewSuperblock builds a well-formed superblock for root and dict,
// stamping the current magic and version.
func NewSuperblock(root Node, dict Range) Superblock {
	return Superblock{
		Dict:    dict,
		Root:    root,
		Version: Version,
		Magic:   Magic,
	}
}

// Encode writes the fixed 44-byte little-endian encoding of s into dst.
// dst must be at least SuperblockSize bytes.
func (s Superblock) Encode(dst []byte) {
	s.Dict.Encode(dst[0:16])
	s.Root.Encode(dst[16:36])
	binary.LittleEndian.PutUint32(dst[36:40], s.Version)
	binary.LittleEndian.PutUint32(dst[40:44], s.Magic)
}

// Bytes returns the encoded superblock as a freshly allocated slice.
func (s Superblock) Bytes() []byte {
	buf := make([]byte, SuperblockSize)
	s.Encode(buf)
	return buf
}

// ErrBadMagic is returned by DecodeSuperblock when the trailing magic
// constant does not match.
var ErrBadMagic = fmt.Errorf("layout: bad magic")

// ErrUnsupportedVersion is returned by DecodeSuperblock when the
// version field names a version this package does not understand.
var ErrUnsupportedVersion = fmt.Errorf("layout: unsupported version")

// DecodeSuperblock decodes a Superblock from the first SuperblockSize
// bytes of src, validating magic and version. No other validation
// (e.g. that ranges fall within the file) happens at this layer.
func DecodeSuperblock(src []byte) (Superblock, error) {
	if len(src) < SuperblockSize {
		return Superblock{}, fmt.Errorf("layout: superblock needs %d bytes, got %d", SuperblockSize, len(src))
	}

	dict, err := DecodeRange(src[0:16])
	if err != nil {
		return Superblock{}, err
	}
	root, err := DecodeNode(src[16:36])
	if err != nil {
		return Superblock{}, err
	}
	version := binary.LittleEndian.Uint32(src[36:40])
	magic := binary.LittleEndian.Uint32(src[40:44])

	if magic != Magic {
		return Superblock{}, ErrBadMagic
	}
	if version != Version {
		return Superblock{}, ErrUnsupportedVersion
	}

	return Superblock{Dict: dict, Root: root, Version: version, Magic: magic}, nil
}
