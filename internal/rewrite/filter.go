package rewrite

import "strings"

// IncludeFile reports whether name passes the pack-time file filter
// (§4.7 "File filter"): not named "implementors", not starting with
// "_", and not exactly "!.html".
func IncludeFile(name string) bool {
	if name == "implementors" {
		return false
	}
	if strings.HasPrefix(name, "_") {
		return false
	}
	if name == "!.html" {
		return false
	}
	return true
}
