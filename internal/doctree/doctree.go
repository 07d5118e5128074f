// Package doctree nests a flat outline into a heading tree.
package doctree

import "github.com/dgallion1/pdfoutline/internal/model"

// DocTree is the root of a nested outline.
type DocTree struct {
	Title    string     // Document title, may be empty
	Children []*DocNode // Top-level headings
}

// DocNode is one heading and the headings nested under it.
type DocNode struct {
	Heading  model.HeadingCandidate
	Children []*DocNode
}

// Build nests headings by level. A heading becomes a child of the closest
// preceding heading with a lower level; skipped levels nest directly.
func Build(o *model.Outline) *DocTree {
	tree := &DocTree{}
	if o == nil {
		return tree
	}
	tree.Title = o.Title

	type stackEntry struct {
		node  *DocNode
		level model.Level
	}
	root := &DocNode{}
	stack := []stackEntry{{node: root, level: model.LevelNone}}

	for _, h := range o.Headings {
		node := &DocNode{Heading: h}
		for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: h.Level})
	}

	tree.Children = root.Children
	return tree
}

// Walk visits every node depth-first. Top-level nodes have depth 0.
func (t *DocTree) Walk(fn func(n *DocNode, depth int)) {
	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 0)
}

// Count returns the number of headings in the tree.
func (t *DocTree) Count() int {
	n := 0
	t.Walk(func(*DocNode, int) { n++ })
	return n
}
