// Package manifest decodes the declarative package-manifest file (TOML)
// into the in-memory Manifest described by the documentation build (§3,
// §4.5). It is a pure decoder: unknown fields are ignored, optional
// fields default, and no semantic validation beyond basic type
// correctness is performed here — flavor well-formedness is the
// resolver's job (internal/flavor).
package manifest

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// FlavorRule is one entry in the docs.flavors list. Exactly one of Name
// or RegexFeature is set once the manifest is well-formed; that
// invariant is enforced by internal/flavor, not here.
type FlavorRule struct {
	Name         string   `toml:"name"`
	RegexFeature string   `toml:"regex_feature"`
	Features     []string `toml:"features"`
	Target       string   `toml:"target"`
}

// Docs is the docs section of the manifest: global defaults plus the
// ordered flavor rules that expand into the build's flavor list.
type Docs struct {
	Target     string       `toml:"target"`
	Features   []string     `toml:"features"`
	Flavors    []FlavorRule `toml:"flavors"`
	SrcBase    string       `toml:"src_base"`
	SrcBaseGit string       `toml:"src_base_git"`
}

// Dependency is one entry of the manifest's dependency map. It may be
// written as a bare version string or as a table; both forms decode to
// this record via UnmarshalTOML.
type Dependency struct {
	Version string
	Path    string // non-empty marks this dependency as local
}

// Local reports whether this dependency is a path dependency, i.e.
// resolved from a sibling source tree rather than a registry.
func (d Dependency) Local() bool {
	return d.Path != ""
}

// UnmarshalTOML implements toml.Unmarshaler so a dependency entry may be
// decoded from either a bare string ("1.2.3") or a table
// ({ version = "1.2.3", path = "../foo" }).
func (d *Dependency) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		d.Version = v
		return nil
	case map[string]interface{}:
		if ver, ok := v["version"].(string); ok {
			d.Version = ver
		}
		if p, ok := v["path"].(string); ok {
			d.Path = p
		}
		return nil
	default:
		return fmt.Errorf("manifest: dependency entry has unsupported shape %T", data)
	}
}

// Manifest is the decoded package manifest: name, its declared
// conditional-compilation feature set (a feature name mapping to the
// list of features it implies), its dependency map, and its docs
// section.
type Manifest struct {
	Name     string                `toml:"name"`
	Features map[string][]string   `toml:"features"`
	Deps     map[string]Dependency `toml:"dependencies"`
	Docs     Docs                  `toml:"docs"`

	// FeatureOrder lists the declared feature names in the order they
	// appear in the manifest document. Go maps have no stable iteration
	// order, but §4.6's regex_feature expansion must iterate the
	// features map "in iteration order"; the document's own order is
	// the only deterministic source of one, so it is captured here from
	// the TOML decoder's key trace rather than left to map iteration.
	FeatureOrder []string

	// Raw holds the exact bytes decoded, so the pack driver can embed
	// the original manifest verbatim at the archive root (§4.8 step 8).
	Raw []byte
}

// Decode parses raw TOML bytes into a Manifest. Missing optional
// sections default to their zero value (an empty Features map, an
// empty Docs).
func Decode(data []byte) (*Manifest, error) {
	m := &Manifest{}
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(m)
	if err != nil {
		return nil, fmt.Errorf("manifest: decoding: %w", err)
	}
	if m.Features == nil {
		m.Features = map[string][]string{}
	}
	if m.Deps == nil {
		m.Deps = map[string]Dependency{}
	}
	m.Raw = append([]byte(nil), data...)
	m.FeatureOrder = featureOrder(meta, m.Features)

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logrus.WithField("keys", undecoded).Debug("manifest: ignoring unrecognized fields")
	}

	return m, nil
}

// featureOrder walks meta's recorded key trace for the first occurrence
// of each "features.<name>" table, preserving document order, and falls
// back to any feature names meta didn't trace (defensive; the decoder
// traces every table it visits) appended in map order.
func featureOrder(meta toml.MetaData, features map[string][]string) []string {
	seen := make(map[string]bool, len(features))
	order := make([]string, 0, len(features))
	for _, key := range meta.Keys() {
		if len(key) < 2 || key[0] != "features" {
			continue
		}
		name := key[1]
		if _, ok := features[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	for name := range features {
		if !seen[name] {
			order = append(order, name)
		}
	}
	return order
}
