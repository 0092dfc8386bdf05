package packer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/docserver/zuparchive/internal/utils"
)

// IncludeFunc decides whether a path (archive-relative, '/'-separated)
// should be kept in the packed tree. isDir is true when relpath names a
// directory; the predicate runs on every path, file or directory.
type IncludeFunc func(relpath string, isDir bool) bool

// RewriteFunc post-processes a file's bytes before hashing. The packer
// calls it only for names ending in ".html"; see internal/rewrite.
type RewriteFunc func(relpath string, data []byte) ([]byte, error)

// treeNode is the in-memory, post-filter, post-rewrite representation
// of one path in the tree being packed.
type treeNode struct {
	name     string
	isDir    bool
	data     []byte // file payload; nil for directories
	children []*treeNode
}

// walk performs the depth-first traversal described in §4.2 step 1:
// entries within a directory are visited in lexicographic order, the
// include predicate prunes whole subtrees, and html rewriting is
// applied to file bytes before they are ever hashed.
func walk(root string, include IncludeFunc, rewrite RewriteFunc) (*treeNode, error) {
	visited := map[string]bool{}
	node, err := walkDir(root, "", include, rewrite, visited)
	if err != nil {
		return nil, err
	}
	if node == nil || (len(node.children) == 0) {
		return nil, ErrEmptyTree
	}
	return node, nil
}

func walkDir(absPath, relPath string, include IncludeFunc, rewrite RewriteFunc, visited map[string]bool) (*treeNode, error) {
	real, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("resolving %s", absPath), err)
	}
	if visited[real] {
		return nil, fmt.Errorf("%w: %s", ErrCycle, relPath)
	}
	visited[real] = true
	defer delete(visited, real)

	entries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("reading directory %s", absPath), err)
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)

	dir := &treeNode{name: path.Base(relPath), isDir: true}

	for _, name := range names {
		if len(name) > 255 {
			return nil, fmt.Errorf("%w: %s/%s", ErrNameTooLong, relPath, name)
		}

		entry := byName[name]
		childRel := path.Join(relPath, name)
		childAbs := filepath.Join(absPath, name)

		if entry.IsDir() {
			if !include(childRel, true) {
				continue
			}
			child, err := walkDir(childAbs, childRel, include, rewrite, visited)
			if err != nil {
				return nil, err
			}
			if child == nil || len(child.children) == 0 {
				continue // an empty directory after filtering is omitted (§4.2 step 1)
			}
			child.name = name
			dir.children = append(dir.children, child)
			continue
		}

		if !include(childRel, false) {
			continue
		}

		data, err := os.ReadFile(childAbs)
		if err != nil {
			return nil, utils.WrapError(fmt.Sprintf("reading file %s", childAbs), err)
		}

		if isHTML(name) && rewrite != nil {
			data, err = rewrite(childRel, data)
			if err != nil {
				return nil, utils.WrapError(fmt.Sprintf("rewriting %s", childRel), err)
			}
		}

		dir.children = append(dir.children, &treeNode{name: name, data: data})
	}

	return dir, nil
}

func isHTML(name string) bool {
	return len(name) > len(".html") && name[len(name)-len(".html"):] == ".html"
}

// flattenFiles returns every file payload in the tree paired with its
// archive-relative path, used to build the dictionary-training sample
// set without a second filesystem walk.
func flattenFiles(n *treeNode, prefix string, out *[]fileSample) {
	for _, c := range n.children {
		rel := path.Join(prefix, c.name)
		if c.isDir {
			flattenFiles(c, rel, out)
			continue
		}
		*out = append(*out, fileSample{path: rel, data: c.data})
	}
}

type fileSample struct {
	path string
	data []byte
}
