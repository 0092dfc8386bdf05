package layout

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxNameLen is the largest name a directory entry may carry: the name
// length prefix is a single byte, so 255 is the hard ceiling.
const MaxNameLen = 255

// Entry is one (name, Node) pair inside a directory listing payload.
type Entry struct {
	Name string
	Node Node
}

// ValidateName reports whether name is an acceptable directory entry
// name: non-empty, at most MaxNameLen UTF-8 bytes, valid UTF-8, and
// free of '/' and NUL.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("layout: empty entry name")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("layout: entry name %q exceeds %d bytes", name, MaxNameLen)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("layout: entry name is not valid UTF-8")
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("layout: entry name %q contains '/' or NUL", name)
	}
	return nil
}

// EncodeListing serializes entries, already sorted by name, into a
// directory listing payload: a concatenation of
// (1-byte name length, name bytes, 20-byte Node) records.
func EncodeListing(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	var prev string
	for i, e := range entries {
		if err := ValidateName(e.Name); err != nil {
			return nil, err
		}
		if i > 0 && e.Name <= prev {
			return nil, fmt.Errorf("layout: directory entries not strictly sorted at %q", e.Name)
		}
		prev = e.Name

		buf.WriteByte(byte(len(e.Name)))
		buf.WriteString(e.Name)
		var nodeBuf [NodeSize]byte
		e.Node.Encode(nodeBuf[:])
		buf.Write(nodeBuf[:])
	}
	return buf.Bytes(), nil
}

// DecodeListing parses a directory listing payload back into entries.
// It does not require the listing be sorted, though well-formed
// archives always produce sorted listings.
func DecodeListing(payload []byte) ([]Entry, error) {
	var entries []Entry
	i := 0
	for i < len(payload) {
		n := int(payload[i])
		i++
		if i+n > len(payload) {
			return nil, fmt.Errorf("layout: truncated listing: name needs %d bytes", n)
		}
		name := string(payload[i : i+n])
		if !utf8.ValidString(name) {
			return nil, fmt.Errorf("layout: listing entry has invalid UTF-8 name")
		}
		i += n

		if i+NodeSize > len(payload) {
			return nil, fmt.Errorf("layout: truncated listing: node needs %d bytes", NodeSize)
		}
		node, err := DecodeNode(payload[i : i+NodeSize])
		if err != nil {
			return nil, err
		}
		i += NodeSize

		entries = append(entries, Entry{Name: name, Node: node})
	}
	return entries, nil
}

// SortEntries sorts entries lexicographically by name (byte order), in
// place, and returns the slice for convenience.
func SortEntries(entries []Entry) []Entry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
