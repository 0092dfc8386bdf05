package extract

import "errors"

// ErrOutputExists is returned when the caller-supplied extraction
// destination already exists (§7 "Policy").
var ErrOutputExists = errors.New("extract: destination already exists")
