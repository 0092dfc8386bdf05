// Package serve implements the subset of HTTP-serving behavior the
// archive format itself dictates (§4.9): sentinel resolution,
// default-flavor redirects, directory-to-index.html redirects, and the
// crate-name duplicate-segment redirect. Routing, cookie storage, and
// templating beyond this contract are left to the host binary (§1
// Non-goals).
package serve

import (
	"regexp"
	"strings"

	"github.com/docserver/zuparchive/internal/manifest"
)

var (
	srcLinkPattern = regexp.MustCompile(`/__DOCSERVER_SRCLINK/([^"'>\s]*)`)
	depLinkPattern = regexp.MustCompile(`/__DOCSERVER_DEPLINK/([^/"'>\s]+)/[^/"'>\s]+/([^"'>\s]*)`)
)

// SentinelRewriter resolves the sentinel URLs the packer's HTML
// rewriter embeds (internal/rewrite) against live, request-time
// context: the package version, the VCS commit, and the flavor the
// current request is being served under.
type SentinelRewriter struct {
	srcBase    string
	srcBaseGit string
	version    string
	commit     string
	flavor     string
}

// NewSentinelRewriter builds a rewriter for one request: m supplies the
// source-base templates, version and commit identify the build being
// served, and flavor is the flavor the current request resolved to
// (used to rewrite DEPLINK targets, which always point at the
// requesting flavor, per §4.9).
func NewSentinelRewriter(m *manifest.Manifest, version, commit, flavor string) *SentinelRewriter {
	return &SentinelRewriter{
		srcBase:    m.Docs.SrcBase,
		srcBaseGit: m.Docs.SrcBaseGit,
		version:    version,
		commit:     commit,
		flavor:     flavor,
	}
}

// Apply rewrites every SRCLINK and DEPLINK sentinel in html.
func (r *SentinelRewriter) Apply(html []byte) []byte {
	out := srcLinkPattern.ReplaceAllFunc(html, func(m []byte) []byte {
		path := srcLinkPattern.FindSubmatch(m)[1]
		return []byte(r.resolveSrcLink(string(path)))
	})
	out = depLinkPattern.ReplaceAllFunc(out, func(m []byte) []byte {
		sub := depLinkPattern.FindSubmatch(m)
		return []byte(r.resolveDepLink(string(sub[1]), string(sub[2])))
	})
	return out
}

// resolveSrcLink resolves "<path>[.html]#<anchor>" against the
// manifest's src_base_git (commit-anchored) template when the request
// is being served at the "git" pseudo-version, naming the unreleased
// main-branch build, and against src_base (version-anchored) for every
// real version number, regardless of whether src_base_git is also
// configured. Anchor forms "-NNN" are translated to "-LNNN" (§4.9,
// scenario 5 in §8).
func (r *SentinelRewriter) resolveSrcLink(pathAndFrag string) string {
	path, frag, _ := strings.Cut(pathAndFrag, "#")
	path = strings.TrimSuffix(path, ".html")

	base := r.srcBase
	subst := "$VERSION"
	value := r.version
	if r.version == "git" {
		base = r.srcBaseGit
		subst = "$COMMIT"
		value = r.commit
	}
	if base == "" {
		// No source-base configured: leave the sentinel path resolved
		// relative to the server root rather than producing a dead link.
		return "/" + path
	}

	resolved := strings.ReplaceAll(base, subst, value) + path
	if frag != "" {
		resolved += "#" + translateAnchor(frag)
	}
	return resolved
}

// resolveDepLink rewrites a DEPLINK sentinel to point at dep's own
// documentation under the current request's flavor, ignoring whatever
// flavor name the sentinel was generated under (§4.9).
func (r *SentinelRewriter) resolveDepLink(dep, rest string) string {
	return "/" + dep + "/git/" + r.flavor + "/" + rest
}

// translateAnchor prefixes each digit run in a '-'-separated anchor
// with "L" (rustdoc line anchors: "42" -> "L42", "42-50" -> "L42-L50").
func translateAnchor(frag string) string {
	parts := strings.Split(frag, "-")
	for i, p := range parts {
		if p != "" && isDigits(p) {
			parts[i] = "L" + p
		}
	}
	return strings.Join(parts, "-")
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
