package flavor

import "errors"

// ErrInvalidFlavor is returned when a flavor rule sets neither or both
// of Name / RegexFeature (§4.6: the two are mutually exclusive).
var ErrInvalidFlavor = errors.New("flavor: rule must set exactly one of name or regex_feature")

// ErrMissingTarget is returned when a resolved flavor has no target:
// neither the rule nor the manifest's global docs.target supplied one.
var ErrMissingTarget = errors.New("flavor: no target available for flavor")

// ErrNoFlavors is returned when the manifest's flavor rules are
// well-formed but expand to zero flavors (e.g. a regex_feature rule
// that matches no declared feature), violating the resolver's
// non-empty-output contract (§4.6).
var ErrNoFlavors = errors.New("flavor: manifest resolved to zero flavors")
