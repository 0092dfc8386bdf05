package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		r    Range
	}{
		{"zero", Range{}},
		{"small", Range{Offset: 16, Len: 5}},
		{"large", Range{Offset: 0xFFFFFFFF, Len: 0x1_0000_0000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, RangeSize)
			tt.r.Encode(buf)

			got, err := DecodeRange(buf)
			require.NoError(t, err)
			require.Equal(t, tt.r, got)
		})
	}
}

func TestRangeIsZero(t *testing.T) {
	require.True(t, Range{}.IsZero())
	require.False(t, Range{Offset: 1}.IsZero())
	require.False(t, Range{Len: 1}.IsZero())
}

func TestNodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		n    Node
	}{
		{"file", Node{Flags: 0, Range: Range{Offset: 44, Len: 10}}},
		{"compressed file", Node{Flags: FlagCompressed, Range: Range{Offset: 100, Len: 42}}},
		{"directory", Node{Flags: FlagDir, Range: Range{Offset: 0, Len: 60}}},
		{"compressed directory", Node{Flags: FlagCompressed | FlagDir, Range: Range{Offset: 7, Len: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, NodeSize)
			tt.n.Encode(buf)

			got, err := DecodeNode(buf)
			require.NoError(t, err)
			require.Equal(t, tt.n, got)
		})
	}
}

func TestNodeFlagAccessors(t *testing.T) {
	n := Node{Flags: FlagCompressed}
	require.True(t, n.Compressed())
	require.False(t, n.Dir())

	n = Node{Flags: FlagDir}
	require.False(t, n.Compressed())
	require.True(t, n.Dir())
}

func TestDecodeNodeTruncated(t *testing.T) {
	_, err := DecodeNode(make([]byte, NodeSize-1))
	require.Error(t, err)
}

func TestSuperblockRoundTrip(t *testing.T) {
	root := Node{Flags: FlagDir, Range: Range{Offset: 0, Len: 80}}
	dict := Range{Offset: 80, Len: 4096}
	sb := NewSuperblock(root, dict)

	require.Equal(t, uint32(Magic), sb.Magic)
	require.Equal(t, uint32(Version), sb.Version)

	buf := sb.Bytes()
	require.Len(t, buf, SuperblockSize)

	got, err := DecodeSuperblock(buf)
	require.NoError(t, err)
	require.Equal(t, sb, got)
}

func TestSuperblockNoDictionary(t *testing.T) {
	root := Node{Flags: FlagDir, Range: Range{Offset: 0, Len: 10}}
	sb := NewSuperblock(root, Range{})

	got, err := DecodeSuperblock(sb.Bytes())
	require.NoError(t, err)
	require.True(t, got.Dict.IsZero())
}

func TestDecodeSuperblockBadMagic(t *testing.T) {
	sb := NewSuperblock(Node{}, Range{})
	buf := sb.Bytes()
	buf[40] ^= 0xFF // corrupt the magic field

	_, err := DecodeSuperblock(buf)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeSuperblockUnsupportedVersion(t *testing.T) {
	sb := NewSuperblock(Node{}, Range{})
	buf := sb.Bytes()
	buf[36] = 2 // version field, little-endian uint32

	_, err := DecodeSuperblock(buf)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeSuperblockTooShort(t *testing.T) {
	_, err := DecodeSuperblock(make([]byte, SuperblockSize-1))
	require.Error(t, err)
}

func TestDecodeSuperblockValidatesMagicBeforeRanges(t *testing.T) {
	// A buffer with non-zero, well-formed dict and root ranges and a
	// corrupted top byte of the magic: DecodeSuperblock must report
	// ErrBadMagic even though every other field is well-formed.
	sb := NewSuperblock(Node{Range: Range{Offset: 1, Len: 2}}, Range{Offset: 3, Len: 4})
	buf := sb.Bytes()
	buf[43] ^= 0xFF

	_, err := DecodeSuperblock(buf)
	require.ErrorIs(t, err, ErrBadMagic)
}
