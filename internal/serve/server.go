package serve

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/docserver/zuparchive/internal/manifest"
	"github.com/docserver/zuparchive/internal/reader"
)

// CookieName is the sticky flavor-preference cookie consulted when a
// request's flavor segment does not exist in the archive.
const CookieName = "docserver_flavor"

// Server serves one package-version's archive over HTTP.
type Server struct {
	Archive  *reader.Archive
	Manifest *manifest.Manifest
	Flavors  []string // declaration order; Flavors[0] is the default
	Crate    string   // underscored crate name, for duplicate-segment redirects
	Version  string
	Commit   string

	HeadTemplate string
	NavTemplate  string
}

// Router builds a chi.Router serving this archive under
// "/{pkg}/{version}/{flavor}/*".
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/{pkg}/{version}/{flavor}/*", s.handle)
	return r
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	pkg := chi.URLParam(r, "pkg")
	version := chi.URLParam(r, "version")
	flavor := chi.URLParam(r, "flavor")
	rest := chi.URLParam(r, "*")

	if !s.hasFlavor(flavor) {
		target := s.defaultFlavor(r)
		http.Redirect(w, r, joinPath(pkg, version, target, rest), http.StatusFound)
		return
	}

	if crateSeg, remainder, ok := strings.Cut(rest, "/"); ok && crateSeg == s.Crate {
		http.Redirect(w, r, joinPath(pkg, version, flavor, remainder), http.StatusFound)
		return
	}

	segments := reader.SplitPath("flavors/" + flavor + "/" + rest)
	node, err := s.Archive.Open(segments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if node.Dir() {
		http.Redirect(w, r, joinPath(pkg, version, flavor, strings.TrimSuffix(rest, "/")+"/index.html"), http.StatusFound)
		return
	}

	payload, err := s.Archive.ReadNode(node)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if strings.HasSuffix(rest, ".html") {
		rw := NewSentinelRewriter(s.Manifest, s.Version, s.Commit, flavor)
		payload = rw.Apply(payload)
		payload = SpliceTemplate(payload, s.HeadTemplate, s.NavTemplate)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else if ct := mime.TypeByExtension(path.Ext(rest)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	w.Write(payload)
}

func (s *Server) hasFlavor(name string) bool {
	for _, f := range s.Flavors {
		if f == name {
			return true
		}
	}
	return false
}

// defaultFlavor returns the request's sticky cookie choice if it names
// a flavor present in this archive, else the first-listed flavor
// (§4.9, §8 scenario 4).
func (s *Server) defaultFlavor(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && s.hasFlavor(cookie.Value) {
		return cookie.Value
	}
	return s.Flavors[0]
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, reader.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	logrus.WithError(err).Error("serve: archive read failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func joinPath(segments ...string) string {
	return "/" + path.Join(segments...)
}
