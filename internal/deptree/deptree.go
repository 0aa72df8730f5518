// Package deptree turns a template's flat dependency list into a
// template → folder → file hierarchy.
//
// Node IDs are positional. The root is always 1, folders count up from 2
// and files count up from 12 within each folder, so IDs repeat across
// folders and across templates. They exist for tree widgets that need an
// id per node and must not be used as keys.
package deptree

import "ui-kit-catalog/internal/model"

// Kind tells renderers which icon a node gets.
type Kind int

const (
	KindRoot Kind = iota
	KindFolder
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

const (
	ViewID     = 0
	RootID     = 1
	folderBase = 2
	fileBase   = 12
)

// Node is a labelled tree node.
type Node struct {
	ID       int
	Label    string
	Kind     Kind
	Children []Node
}

// Tree is the rendered hierarchy for one template.
type Tree struct {
	ID   int
	Root Node
}

// Folders returns the distinct folder values in first-seen order.
func Folders(deps []model.Dependency) []string {
	seen := make(map[string]struct{}, len(deps))
	folders := make([]string, 0, len(deps))
	for _, d := range deps {
		if _, ok := seen[d.Folder]; ok {
			continue
		}
		seen[d.Folder] = struct{}{}
		folders = append(folders, d.Folder)
	}
	return folders
}

// Files returns the names of the entries in folder, in their original order.
func Files(deps []model.Dependency, folder string) []string {
	var files []string
	for _, d := range deps {
		if d.Folder == folder {
			files = append(files, d.Name)
		}
	}
	return files
}

// Build groups deps by folder under a root labelled with the template name.
func Build(name string, deps []model.Dependency) Tree {
	root := Node{ID: RootID, Label: name, Kind: KindRoot}
	for i, folder := range Folders(deps) {
		fn := Node{ID: i + folderBase, Label: folder, Kind: KindFolder}
		for j, file := range Files(deps, folder) {
			fn.Children = append(fn.Children, Node{ID: j + fileBase, Label: file, Kind: KindFile})
		}
		root.Children = append(root.Children, fn)
	}
	return Tree{ID: ViewID, Root: root}
}

// Walk visits every node depth first, root at depth 0.
func (t Tree) Walk(fn func(n Node, depth int)) {
	walk(t.Root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int)) {
	fn(n, depth)
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}
