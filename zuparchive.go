// Package zuparchive provides a pure Go implementation of the zup
// documentation archive format: writing (internal/packer), reading
// (internal/reader), extraction (internal/extract), and the build
// driver that turns a package manifest into a packed archive
// (internal/pack).
package zuparchive

import (
	"context"

	"github.com/docserver/zuparchive/internal/extract"
	"github.com/docserver/zuparchive/internal/layout"
	"github.com/docserver/zuparchive/internal/pack"
	"github.com/docserver/zuparchive/internal/packer"
	"github.com/docserver/zuparchive/internal/reader"
)

// Archive is an opened, read-only zup archive.
type Archive struct {
	inner *reader.Archive
}

// Open opens an archive for reading.
func Open(path string) (*Archive, error) {
	a, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	return &Archive{inner: a}, nil
}

// Close releases the archive's underlying file handle.
func (a *Archive) Close() error {
	return a.inner.Close()
}

// Read returns the contents of the file at the given slash-separated
// archive path.
func (a *Archive) Read(path string) ([]byte, error) {
	return a.inner.Read(reader.SplitPath(path))
}

// ReadDir returns the directory entries at the given archive path.
func (a *Archive) ReadDir(path string) ([]layout.Entry, error) {
	return a.inner.ReadDir(reader.SplitPath(path))
}

// Extract writes the archive's full contents to dest, a directory that
// must not already exist.
func (a *Archive) Extract(dest string) (extract.Stats, error) {
	return extract.To(a.inner, dest)
}

// PackOptions configures a direct tree-to-archive build, bypassing the
// manifest-driven pipeline (Build below). Useful for packing a single
// already-rendered documentation tree.
type PackOptions = packer.Options

// Pack walks root and writes a complete archive to destPath.
func Pack(root, destPath string, opts PackOptions) (packer.Stats, error) {
	return packer.Pack(root, destPath, opts)
}

// BuildOptions configures a full manifest-driven build: generator
// invocation, flavor resolution, HTML rewriting, and packing.
type BuildOptions = pack.Options

// BuildResult reports what a manifest-driven build produced.
type BuildResult = pack.Result

// Build runs the full pipeline described in the packing specification:
// manifest load, flavor resolution, batched documentation-generator
// invocation, and archive assembly.
func Build(ctx context.Context, opts BuildOptions) (BuildResult, error) {
	return pack.Build(ctx, opts)
}
