package packer

import "errors"

// Build-time failures, per §4.2 "Failure semantics" and the error
// taxonomy in §7.
var (
	ErrEmptyTree   = errors.New("packer: input tree is empty after filtering")
	ErrNameTooLong = errors.New("packer: directory entry name exceeds 255 bytes")
	ErrCycle       = errors.New("packer: filesystem cycle detected")
)
