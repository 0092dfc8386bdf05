package reader

import "errors"

// Format and filesystem errors a reader can return, per §7.
var (
	ErrNotFound          = errors.New("reader: path not found")
	ErrNotADirectory     = errors.New("reader: not a directory")
	ErrIsADirectory      = errors.New("reader: is a directory")
	ErrMissingDictionary = errors.New("reader: node is compressed but archive has no dictionary")
	ErrRangeTooLarge     = errors.New("reader: range exceeds maximum single read size")
	ErrBadName           = errors.New("reader: directory entry name is not valid UTF-8")
)

// MaxRangeBytes caps any single range read, rejecting obviously
// corrupt headers rather than attempting a multi-gigabyte allocation.
const MaxRangeBytes = 100 * 1024 * 1024
