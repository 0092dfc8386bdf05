package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ok", "index.html", false},
		{"empty", "", true},
		{"slash", "a/b", true},
		{"nul", "a\x00b", true},
		{"max length", strings.Repeat("a", MaxNameLen), false},
		{"too long", strings.Repeat("a", MaxNameLen+1), true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEncodeDecodeListingRoundTrip(t *testing.T) {
	entries := SortEntries([]Entry{
		{Name: "c.txt", Node: Node{Range: Range{Offset: 3, Len: 1}}},
		{Name: "a.txt", Node: Node{Range: Range{Offset: 1, Len: 1}}},
		{Name: "sub", Node: Node{Flags: FlagDir, Range: Range{Offset: 2, Len: 1}}},
	})

	payload, err := EncodeListing(entries)
	require.NoError(t, err)

	got, err := DecodeListing(payload)
	require.NoError(t, err)
	require.Equal(t, entries, got)

	// Sorted lexicographically by name.
	require.Equal(t, []string{"a.txt", "c.txt", "sub"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestEncodeListingRejectsUnsortedEntries(t *testing.T) {
	entries := []Entry{
		{Name: "b.txt", Node: Node{}},
		{Name: "a.txt", Node: Node{}},
	}
	_, err := EncodeListing(entries)
	require.Error(t, err)
}

func TestEncodeListingRejectsDuplicateNames(t *testing.T) {
	entries := []Entry{
		{Name: "a.txt", Node: Node{}},
		{Name: "a.txt", Node: Node{}},
	}
	_, err := EncodeListing(entries)
	require.Error(t, err)
}

func TestEncodeListingRejectsBadName(t *testing.T) {
	_, err := EncodeListing([]Entry{{Name: "bad/name", Node: Node{}}})
	require.Error(t, err)
}

func TestDecodeListingTruncated(t *testing.T) {
	_, err := DecodeListing([]byte{5, 'a', 'b'})
	require.Error(t, err)
}

func TestEncodeListingEmpty(t *testing.T) {
	payload, err := EncodeListing(nil)
	require.NoError(t, err)
	require.Empty(t, payload)

	entries, err := DecodeListing(payload)
	require.NoError(t, err)
	require.Empty(t, entries)
}
