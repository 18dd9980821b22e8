// Package render builds the annotated directory tree section from traversal events.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/overview/internal/types"
	"github.com/temirov/overview/internal/walker"
)

const (
	treeHeaderFormat = "Directory tree: %s\n"
	unknownOwner     = "?"

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
)

// ErrUnbalancedEvents is returned when a leave event has no matching enter event.
var ErrUnbalancedEvents = errors.New("leave event without matching enter event")

// Renderer accumulates tree nodes from traversal events.
type Renderer struct {
	rootLabel string
	root      *types.TreeNode
	stack     []*types.TreeNode
}

// NewRenderer creates a Renderer. rootLabel is printed in the section header.
func NewRenderer(rootLabel string) *Renderer {
	return &Renderer{rootLabel: rootLabel}
}

// Handle consumes one traversal event.
func (renderer *Renderer) Handle(event walker.Event) error {
	switch event.Kind {
	case walker.EventEnterDirectory:
		node := newNode(event.Entry)
		if len(renderer.stack) == 0 {
			if renderer.root == nil {
				renderer.root = node
			}
		} else {
			parent := renderer.stack[len(renderer.stack)-1]
			parent.Children = append(parent.Children, node)
		}
		renderer.stack = append(renderer.stack, node)
	case walker.EventLeaveDirectory:
		if len(renderer.stack) == 0 {
			return ErrUnbalancedEvents
		}
		renderer.stack = renderer.stack[:len(renderer.stack)-1]
	case walker.EventFile, walker.EventSymlink:
		if len(renderer.stack) == 0 {
			return fmt.Errorf("entry %s reported outside a directory", event.Entry.RelativePath)
		}
		parent := renderer.stack[len(renderer.stack)-1]
		parent.Children = append(parent.Children, newNode(event.Entry))
	}
	return nil
}

// Root returns the tree built so far, or nil before the root directory was reported.
func (renderer *Renderer) Root() *types.TreeNode {
	return renderer.root
}

// Render writes the tree section. Output depends only on the consumed events.
func (renderer *Renderer) Render(writer io.Writer) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, treeHeaderFormat, renderer.rootLabel)
	if renderer.root != nil {
		renderNode(&builder, renderer.root, "", true, true)
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

// String returns the rendered tree section.
func (renderer *Renderer) String() string {
	var builder strings.Builder
	_ = renderer.Render(&builder)
	return builder.String()
}

func newNode(entry types.FileEntry) *types.TreeNode {
	node := &types.TreeNode{
		Name:        entry.Name,
		Path:        entry.RelativePath,
		Type:        entry.Kind,
		Permissions: entry.Mode.String(),
		Owner:       entry.Owner,
		LinkTarget:  entry.LinkTarget,
	}
	if entry.Kind == types.EntryKindFile {
		node.Size = entry.Size
	}
	return node
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderNode(builder *strings.Builder, node *types.TreeNode, prefix string, isRoot bool, isLast bool) {
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	builder.WriteString(linePrefix)
	builder.WriteString(nodeLabel(node, isRoot))
	builder.WriteByte('\n')
	for index, child := range node.Children {
		renderNode(builder, child, childPrefix, false, index == len(node.Children)-1)
	}
}

// nodeLabel formats "<permissions> <owner> <name>" followed by the link target and
// the entry type. The root is shown as "./" without a type.
func nodeLabel(node *types.TreeNode, isRoot bool) string {
	owner := node.Owner
	if owner == "" {
		owner = unknownOwner
	}
	name := node.Name
	if isRoot {
		name = "."
	}
	if node.Type == types.EntryKindDirectory {
		name += "/"
	}
	label := node.Permissions + " " + owner + " " + name
	if node.Type == types.EntryKindSymlink && node.LinkTarget != "" {
		label += " -> " + node.LinkTarget
	}
	if isRoot {
		return label
	}
	return label + " [" + string(node.Type) + "]"
}
