// Package rewrite implements the deterministic, byte-level HTML
// transforms the pack driver applies to every ".html" payload before
// it is hashed (§4.7). The six transforms run in a fixed order and are
// pure functions of their input: the same bytes in always produce the
// same bytes out, which the writer's dedup/hash-stability properties
// depend on.
package rewrite

import "regexp"

// Rewriter applies the fixed transform sequence for one crate
// (package) identifier: the package name with '-' replaced by '_'.
type Rewriter struct {
	crate string

	settingsMenu  *regexp.Regexp
	underscoreSrc *regexp.Regexp
	srcLink       *regexp.Regexp
	cratesScript  *regexp.Regexp
	selfRef       *regexp.Regexp
	rootPath      *regexp.Regexp
}

// New builds a Rewriter for crate, the crate-identifier used to scope
// the self-reference and source-link transforms.
func New(crate string) *Rewriter {
	q := regexp.QuoteMeta(crate)
	return &Rewriter{
		crate:         crate,
		settingsMenu:  regexp.MustCompile(`(?s)<a id="settings-menu"[^>]*>.*?</a>`),
		underscoreSrc: regexp.MustCompile(`(?s)<a class="src" href="[^"]*/_[^"]*">source</a>`),
		srcLink:       regexp.MustCompile(`href="(?:\.\./)+src/` + q + `/([^"]*)"`),
		cratesScript:  regexp.MustCompile(`(?s)<script[^>]*src="(?:\.\./)+crates\.js"></script>`),
		selfRef:       regexp.MustCompile(`\.\./` + q + `/`),
		rootPath:      regexp.MustCompile(`data-root-path="\.\./`),
	}
}

// Apply runs all six transforms, in order, over html and returns the
// rewritten bytes.
func (r *Rewriter) Apply(html []byte) []byte {
	out := html
	out = r.settingsMenu.ReplaceAll(out, nil)
	out = r.underscoreSrc.ReplaceAll(out, nil)
	out = r.srcLink.ReplaceAll(out, []byte(`href="/__DOCSERVER_SRCLINK/$1"`))
	out = r.cratesScript.ReplaceAll(out, []byte(`<script>window.ALL_CRATES=["`+r.crate+`"];</script>`))
	out = r.selfRef.ReplaceAll(out, nil)
	out = r.rootPath.ReplaceAll(out, []byte(`data-root-path="./`))
	return out
}
