// Package flavor expands a manifest's docs.flavors rules into the
// concrete, ordered list of (name, features, target) triples a build
// invokes the documentation generator once per (§4.6).
package flavor

import (
	"fmt"
	"regexp"

	"github.com/docserver/zuparchive/internal/manifest"
)

// Flavor is one resolved documentation build: a unique name, an
// ordered feature list to pass to the generator, and a compilation
// target.
type Flavor struct {
	Name     string
	Features []string
	Target   string
}

// Resolve expands m's docs.flavors rules into a non-empty ordered list
// of Flavor. If the manifest declares no rules, it emits a single
// "default" flavor from the global target and features.
func Resolve(m *manifest.Manifest) ([]Flavor, error) {
	if len(m.Docs.Flavors) == 0 {
		if m.Docs.Target == "" {
			return nil, ErrMissingTarget
		}
		return []Flavor{{
			Name:     "default",
			Features: append([]string(nil), m.Docs.Features...),
			Target:   m.Docs.Target,
		}}, nil
	}

	matched := make(map[string]bool)
	var out []Flavor

	for _, rule := range m.Docs.Flavors {
		hasName := rule.Name != ""
		hasRegex := rule.RegexFeature != ""
		if hasName == hasRegex {
			return nil, ErrInvalidFlavor
		}

		target := rule.Target
		if target == "" {
			target = m.Docs.Target
		}

		if hasName {
			if target == "" {
				return nil, ErrMissingTarget
			}
			out = append(out, Flavor{
				Name:     rule.Name,
				Features: combine(nil, m.Docs.Features, rule.Features),
				Target:   target,
			})
			continue
		}

		re, err := regexp.Compile("^(?:" + rule.RegexFeature + ")$")
		if err != nil {
			return nil, fmt.Errorf("flavor: compiling regex_feature %q: %w", rule.RegexFeature, err)
		}

		for _, featName := range m.FeatureOrder {
			if matched[featName] || !re.MatchString(featName) {
				continue
			}
			matched[featName] = true

			if target == "" {
				return nil, ErrMissingTarget
			}
			out = append(out, Flavor{
				Name:     featName,
				Features: combine([]string{featName}, m.Docs.Features, rule.Features),
				Target:   target,
			})
		}
	}

	if len(out) == 0 {
		return nil, ErrNoFlavors
	}
	return out, nil
}

// combine builds a flavor's feature list as base ++ global ++ rule,
// the order §4.6 specifies.
func combine(base, global, rule []string) []string {
	out := make([]string, 0, len(base)+len(global)+len(rule))
	out = append(out, base...)
	out = append(out, global...)
	out = append(out, rule...)
	return out
}
