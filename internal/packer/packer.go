// Package packer implements the zup archive writer: it walks a filtered,
// rewritten input tree and emits a content-addressed, optionally
// zstd-compressed archive terminated by a superblock (§4.2).
package packer

import (
	"crypto/sha256"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"github.com/docserver/zuparchive/internal/dictionary"
	"github.com/docserver/zuparchive/internal/layout"
	"github.com/docserver/zuparchive/internal/utils"
	"github.com/docserver/zuparchive/internal/writer"
	"github.com/docserver/zuparchive/internal/zstdcodec"
)

// CompressionConfig enables and parameterizes zstd compression of node
// payloads against a dictionary trained from the input tree.
type CompressionConfig struct {
	Level         zstd.EncoderLevel
	DictSize      int
	DictTrainSize int
}

// Options configures one archive build.
type Options struct {
	Include     IncludeFunc
	Rewrite     RewriteFunc // applied to ".html" file bytes before hashing
	Compression *CompressionConfig
}

// Stats reports the node counts a build produced, used by tests of the
// dedup-idempotence property (§8.2) and scenario 1 (§8).
type Stats struct {
	TotalFiles       int
	NodesBeforeDedup int
	NodesAfterDedup  int
}

type storedNode struct {
	Range      layout.Range
	Compressed bool
}

type packer struct {
	fw       *writer.FileWriter
	dict     []byte
	level    zstd.EncoderLevel
	compress bool
	dedup    map[[32]byte]storedNode
	stats    Stats
}

// Pack walks root, applies opts.Include and opts.Rewrite, and writes a
// complete zup archive to destPath. It returns build stats for testing
// and diagnostics.
func Pack(root, destPath string, opts Options) (Stats, error) {
	include := opts.Include
	if include == nil {
		include = func(string, bool) bool { return true }
	}

	tree, err := walk(root, include, opts.Rewrite)
	if err != nil {
		return Stats{}, err
	}

	fw, err := writer.NewFileWriter(destPath)
	if err != nil {
		return Stats{}, utils.WrapError("creating archive file", err)
	}
	defer fw.Close()

	p := &packer{
		fw:    fw,
		dedup: make(map[[32]byte]storedNode),
	}

	var files []fileSample
	flattenFiles(tree, "", &files)
	p.stats.TotalFiles = len(files)

	if opts.Compression != nil {
		p.compress = true
		p.level = opts.Compression.Level
		samples := make([]dictionary.Sample, len(files))
		for i, f := range files {
			samples[i] = dictionary.Sample{Path: f.path, Data: f.data}
		}
		if dict, ok := dictionary.Train(samples, opts.Compression.DictTrainSize, opts.Compression.DictSize); ok {
			p.dict = dict
		}
	}

	rootNode, err := p.emit(tree, true)
	if err != nil {
		return Stats{}, err
	}

	var dictRange layout.Range
	if p.dict != nil {
		dictRange, err = fw.Append(p.dict)
		if err != nil {
			return Stats{}, utils.WrapError("writing dictionary", err)
		}
	}

	sb := layout.NewSuperblock(rootNode, dictRange)
	if _, err := fw.Append(sb.Bytes()); err != nil {
		return Stats{}, utils.WrapError("writing superblock", err)
	}

	if err := fw.Flush(); err != nil {
		return Stats{}, utils.WrapError("flushing archive", err)
	}

	logrus.WithFields(logrus.Fields{
		"total_files":        p.stats.TotalFiles,
		"nodes_before_dedup": p.stats.NodesBeforeDedup,
		"nodes_after_dedup":  p.stats.NodesAfterDedup,
		"dictionary":         p.dict != nil,
	}).Info("packer: archive written")

	return p.stats, nil
}

// emit recursively stores n (and, for directories, its children) and
// returns the Node reference for it. Deduplication is keyed on the
// logical payload hash; the DIR flag is a property of the reference,
// not the stored bytes (§4.2 step 5, §9).
func (p *packer) emit(n *treeNode, isDir bool) (layout.Node, error) {
	var payload []byte
	if n.isDir {
		entries := make([]layout.Entry, 0, len(n.children))
		for _, c := range n.children {
			child, err := p.emit(c, c.isDir)
			if err != nil {
				return layout.Node{}, err
			}
			entries = append(entries, layout.Entry{Name: c.name, Node: child})
		}
		layout.SortEntries(entries)

		var err error
		payload, err = layout.EncodeListing(entries)
		if err != nil {
			return layout.Node{}, err
		}
	} else {
		payload = n.data
	}

	return p.store(payload, isDir)
}

func (p *packer) store(payload []byte, isDir bool) (layout.Node, error) {
	p.stats.NodesBeforeDedup++

	hash := sha256.Sum256(payload)
	if sn, ok := p.dedup[hash]; ok {
		return p.reference(sn, isDir), nil
	}

	p.stats.NodesAfterDedup++

	sn, err := p.storeNew(payload)
	if err != nil {
		return layout.Node{}, err
	}
	p.dedup[hash] = sn

	return p.reference(sn, isDir), nil
}

func (p *packer) storeNew(payload []byte) (storedNode, error) {
	if len(payload) == 0 {
		return storedNode{Range: layout.Range{Offset: p.fw.EndOfFile(), Len: 0}}, nil
	}

	stored := payload
	compressed := false
	if p.compress {
		candidate, err := zstdcodec.Compress(payload, p.dict, p.level)
		if err != nil {
			return storedNode{}, utils.WrapError("compressing node", err)
		}
		if len(candidate) < len(payload) {
			stored = candidate
			compressed = true
		}
	}

	rng, err := p.fw.Append(stored)
	if err != nil {
		return storedNode{}, utils.WrapError("writing node", err)
	}

	return storedNode{Range: rng, Compressed: compressed}, nil
}

func (p *packer) reference(sn storedNode, isDir bool) layout.Node {
	var flags uint32
	if sn.Compressed {
		flags |= layout.FlagCompressed
	}
	if isDir {
		flags |= layout.FlagDir
	}
	return layout.Node{Flags: flags, Range: sn.Range}
}
