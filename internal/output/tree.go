package output

import (
	"path"
	"sort"
	"strings"
)

const (
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "

	// descriptionColumn aligns file descriptions.
	descriptionColumn = 40
)

// treeNode is a directory (children != nil) or a file.
type treeNode struct {
	name        string
	description string
	children    map[string]*treeNode
}

func (n *treeNode) isDir() bool { return n.children != nil }

// RenderFileTree renders slash-separated file paths below rootName.
// files maps each path to a description shown in a dimmed, aligned column.
// Directories sort before files, then by name.
func RenderFileTree(rootName string, files map[string]string) string {
	if len(files) == 0 {
		return ""
	}

	root := &treeNode{name: rootName, children: map[string]*treeNode{}}
	for p, desc := range files {
		current := root
		parts := strings.Split(path.Clean(p), "/")
		for i, part := range parts {
			child, ok := current.children[part]
			if !ok {
				child = &treeNode{name: part}
				if i < len(parts)-1 {
					child.children = map[string]*treeNode{}
				}
				current.children[part] = child
			}
			if i == len(parts)-1 {
				child.description = desc
			}
			current = child
		}
	}

	var sb strings.Builder
	sb.WriteString(StyleSummary.Render(rootName + "/"))
	sb.WriteString("\n")
	writeChildren(&sb, root, "")
	return sb.String()
}

func writeChildren(sb *strings.Builder, dir *treeNode, prefix string) {
	children := make([]*treeNode, 0, len(dir.children))
	for _, c := range dir.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].isDir() != children[j].isDir() {
			return children[i].isDir()
		}
		return children[i].name < children[j].name
	})

	for i, c := range children {
		last := i == len(children)-1
		connector, indent := treeEdge, treeVert
		if last {
			connector, indent = treeLast, treeSpace
		}

		line := prefix + connector + c.name
		if c.isDir() {
			line += "/"
		}
		if c.description != "" {
			padding := descriptionColumn - len([]rune(line))
			if padding < 2 {
				padding = 2
			}
			line += strings.Repeat(" ", padding) + StyleDim.Render(c.description)
		}
		sb.WriteString(line)
		sb.WriteString("\n")

		if c.isDir() {
			writeChildren(sb, c, prefix+indent)
		}
	}
}
