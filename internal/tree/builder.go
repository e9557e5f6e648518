// Package tree reconstructs a pruned folder hierarchy from a flat list of
// scanned files. The tree is rebuilt from path strings on every call and
// carries no identity across calls.
package tree

import (
	"path/filepath"
	"sort"

	"github.com/trovescan/trove/internal/inventory"
	"github.com/trovescan/trove/internal/pathutil"
)

// Build groups files by parent path and assembles one node per requested
// root. Nodes whose subtree holds no matched files are pruned, including
// roots. When kinds is non-empty, only files of those kinds count.
//
// Each node's children are ordered by latest modification descending and
// its direct files by modification time descending.
func Build(files []inventory.ScannedFile, roots []string, kinds []inventory.FileKind) []*inventory.FolderNode {
	b := &builder{groups: make(map[string][]inventory.ScannedFile)}
	if len(kinds) > 0 {
		b.kinds = make(map[inventory.FileKind]struct{}, len(kinds))
		for _, k := range kinds {
			b.kinds[k] = struct{}{}
		}
	}

	for _, f := range files {
		parent := pathutil.Normalize(f.ParentPath)
		b.groups[parent] = append(b.groups[parent], f)
	}

	var nodes []*inventory.FolderNode
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		root = pathutil.Normalize(root)
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		if node := b.build(root); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

type builder struct {
	groups map[string][]inventory.ScannedFile
	kinds  map[inventory.FileKind]struct{}
}

// build assembles the node at path, or returns nil when the subtree counts
// zero files and must be pruned.
func (b *builder) build(path string) *inventory.FolderNode {
	node := &inventory.FolderNode{
		Path: path,
		Name: filepath.Base(path),
	}

	direct := b.filtered(b.groups[path])
	node.FileCount = int64(len(direct))
	node.TotalFileCount = node.FileCount
	for _, f := range direct {
		node.TotalSize += f.Size
		if f.ModifiedAt.After(node.LatestModified) {
			node.LatestModified = f.ModifiedAt
		}
	}

	for _, childPath := range b.childDirs(path) {
		child := b.build(childPath)
		if child == nil {
			continue
		}
		node.Children = append(node.Children, child)
		node.TotalFileCount += child.TotalFileCount
		node.TotalSize += child.TotalSize
		if child.LatestModified.After(node.LatestModified) {
			node.LatestModified = child.LatestModified
		}
	}

	if node.TotalFileCount == 0 {
		return nil
	}

	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].LatestModified.After(node.Children[j].LatestModified)
	})
	sort.SliceStable(direct, func(i, j int) bool {
		return direct[i].ModifiedAt.After(direct[j].ModifiedAt)
	})
	node.Files = direct
	return node
}

// childDirs derives the distinct first-level directories found among all
// grouped keys nested under path. Every deeper key contributes exactly one
// immediate child, so no file is ever counted under two siblings.
func (b *builder) childDirs(path string) []string {
	set := make(map[string]struct{})
	for key := range b.groups {
		if child, ok := pathutil.ChildUnder(path, key); ok {
			set[child] = struct{}{}
		}
	}
	children := make([]string, 0, len(set))
	for child := range set {
		children = append(children, child)
	}
	sort.Strings(children)
	return children
}

func (b *builder) filtered(files []inventory.ScannedFile) []inventory.ScannedFile {
	if b.kinds == nil {
		out := make([]inventory.ScannedFile, len(files))
		copy(out, files)
		return out
	}
	var out []inventory.ScannedFile
	for _, f := range files {
		if _, ok := b.kinds[f.Kind]; ok {
			out = append(out, f)
		}
	}
	return out
}
