// Package extract walks an opened archive's node DAG and writes its
// full contents back out to a plain directory tree, the inverse of
// internal/packer. It supplements the build/serve pipeline described
// by the documentation archive format with the inspection operation
// the format's own error taxonomy names (§7 "Policy" — OutputExists).
package extract

import (
	"os"
	"path/filepath"

	"github.com/docserver/zuparchive/internal/layout"
	"github.com/docserver/zuparchive/internal/reader"
	"github.com/docserver/zuparchive/internal/utils"
)

// Stats reports what an extraction wrote.
type Stats struct {
	Files int
	Bytes int
}

// To extracts a's full tree into dest. dest must not already exist
// (§7: ErrOutputExists), so a caller never silently merges into
// unrelated existing content. Each distinct Node is visited once: when
// two paths dedup to the same content node, only the first path
// encountered in traversal order is written to disk.
func To(a *reader.Archive, dest string) (Stats, error) {
	if _, err := os.Stat(dest); err == nil {
		return Stats{}, ErrOutputExists
	} else if !os.IsNotExist(err) {
		return Stats{}, utils.WrapError("statting destination", err)
	}

	w := &walker{archive: a, visited: map[layout.Node]bool{}}
	if err := w.walk(a.Root(), dest); err != nil {
		return Stats{}, err
	}
	return w.stats, nil
}

type walker struct {
	archive *reader.Archive
	visited map[layout.Node]bool
	stats   Stats
}

func (w *walker) walk(n layout.Node, path string) error {
	if w.visited[n] {
		return nil
	}
	w.visited[n] = true

	if n.Dir() {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return utils.WrapError("creating directory "+path, err)
		}
		entries, err := w.archive.Listing(n)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := w.walk(e.Node, filepath.Join(path, e.Name)); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := w.archive.ReadNode(n)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return utils.WrapError("creating directory for "+path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return utils.WrapError("writing "+path, err)
	}

	w.stats.Files++
	w.stats.Bytes += len(data)
	return nil
}
