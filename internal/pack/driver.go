// Package pack is the build driver (§4.8): it loads a manifest,
// resolves flavors, drives a single batched documentation-generator
// invocation, moves auxiliary search index files into place, and
// funnels the assembled tree into the archive writer. It is
// single-threaded across its own steps, because the writer's dedup
// table is not concurrent-safe (§4.8 "Concurrency model").
package pack

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/docserver/zuparchive/internal/flavor"
	"github.com/docserver/zuparchive/internal/generator"
	"github.com/docserver/zuparchive/internal/manifest"
	"github.com/docserver/zuparchive/internal/packer"
	"github.com/docserver/zuparchive/internal/rewrite"
	"github.com/docserver/zuparchive/internal/utils"
)

// auxIndexFiles are the per-flavor-root search index files that the
// generator writes alongside the crate subdirectory and that must be
// relocated into it before packing (§4.8 step 6).
var auxIndexFiles = []string{"search.desc", "search.index", "search-index.js"}

// Options configures one end-to-end build.
type Options struct {
	// ManifestPath is the package manifest file to load.
	ManifestPath string
	// GeneratorBinary is the external documentation generator executable.
	GeneratorBinary string
	// StaticRootPath is passed through to the generator as the
	// sentinel static-asset root (§4.8 step 4).
	StaticRootPath string
	// WorkDir holds the generator's raw per-flavor output, one
	// subdirectory per flavor name, plus a shared "static.files"
	// directory written once for the whole batch.
	WorkDir string
	// StagingDir is where the driver assembles the filtered,
	// rewritten tree the packer walks.
	StagingDir string
	// DestPath is the output archive file.
	DestPath string
	// StaticOutputDir receives a single copy of the generator's shared
	// static asset bundle, outside the archive (§4.8 step 9).
	StaticOutputDir string
	// VcsDir is the repository the VCS commit lookup runs in.
	VcsDir string
	// Compression enables and configures archive-level compression.
	Compression *packer.CompressionConfig
}

// Result reports what a build produced.
type Result struct {
	Manifest *manifest.Manifest
	Flavors  []flavor.Flavor
	Commit   generator.Info
	Stats    packer.Stats
}

// Build runs the full pipeline described in §4.8 and returns the
// resulting archive's build stats.
func Build(ctx context.Context, opts Options) (Result, error) {
	raw, err := os.ReadFile(opts.ManifestPath)
	if err != nil {
		return Result{}, utils.WrapError("reading manifest", err)
	}

	m, err := manifest.Decode(raw)
	if err != nil {
		return Result{}, err
	}

	commit, err := generator.CommitInfo(ctx, opts.VcsDir)
	if err != nil {
		return Result{}, err
	}

	flavors, err := flavor.Resolve(m)
	if err != nil {
		return Result{}, err
	}

	crate := strings.ReplaceAll(m.Name, "-", "_")

	jobs := make([]generator.Job, len(flavors))
	for i, fl := range flavors {
		jobs[i] = generator.Job{Flavor: fl, OutDir: filepath.Join(opts.WorkDir, fl.Name)}
	}

	var localDeps []string
	for name, dep := range m.Deps {
		if dep.Local() {
			localDeps = append(localDeps, name)
		}
	}

	stdout, stderr, err := generator.Build(ctx, generator.Options{
		Binary:         opts.GeneratorBinary,
		ManifestPath:   opts.ManifestPath,
		StaticRootPath: opts.StaticRootPath,
		LocalDeps:      localDeps,
	}, jobs)
	if err != nil {
		logrus.WithFields(logrus.Fields{"stdout": stdout, "stderr": stderr}).Error("pack: generator invocation failed")
		return Result{}, err
	}

	for _, job := range jobs {
		if err := relocateAuxFiles(job.OutDir, crate); err != nil {
			return Result{}, err
		}

		crateDir := filepath.Join(job.OutDir, crate)
		flavorStaging := filepath.Join(opts.StagingDir, "flavors", job.Flavor.Name)
		if err := copyTree(crateDir, flavorStaging); err != nil {
			return Result{}, utils.WrapError("staging flavor "+job.Flavor.Name, err)
		}
	}

	if err := os.WriteFile(filepath.Join(opts.StagingDir, "Cargo.toml"), m.Raw, 0o644); err != nil {
		return Result{}, utils.WrapError("writing manifest copy", err)
	}

	infoBytes, err := json.Marshal(commit)
	if err != nil {
		return Result{}, utils.WrapError("encoding docserver info", err)
	}
	if err := os.WriteFile(filepath.Join(opts.StagingDir, "info.json"), infoBytes, 0o644); err != nil {
		return Result{}, utils.WrapError("writing docserver info", err)
	}

	if staticSrc := filepath.Join(opts.WorkDir, "static.files"); opts.StaticOutputDir != "" && dirExists(staticSrc) {
		if err := copyTree(staticSrc, opts.StaticOutputDir); err != nil {
			return Result{}, utils.WrapError("copying static assets", err)
		}
	}

	rw := rewrite.New(crate)
	rewriteFn := func(_ string, data []byte) ([]byte, error) { return rw.Apply(data), nil }
	includeFn := func(relpath string, isDir bool) bool {
		return rewrite.IncludeFile(filepath.Base(relpath))
	}

	stats, err := packer.Pack(opts.StagingDir, opts.DestPath, packer.Options{
		Include:     includeFn,
		Rewrite:     rewriteFn,
		Compression: opts.Compression,
	})
	if err != nil {
		return Result{}, err
	}

	logrus.WithFields(logrus.Fields{
		"package": m.Name,
		"flavors": len(flavors),
		"commit":  commit.GitCommit,
	}).Info("pack: build complete")

	return Result{Manifest: m, Flavors: flavors, Commit: commit, Stats: stats}, nil
}

func relocateAuxFiles(flavorRoot, crate string) error {
	crateDir := filepath.Join(flavorRoot, crate)
	for _, name := range auxIndexFiles {
		src := filepath.Join(flavorRoot, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, filepath.Join(crateDir, name)); err != nil {
			return utils.WrapError("relocating "+name, err)
		}
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
