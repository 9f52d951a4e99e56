// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pattern

import "strings"

// Node is one span of a parse tree produced by a successful match. Only
// tagged spans carry a Tag; leaf nodes for individual tokens and nodes
// produced by actions are untagged. Begin and End are token indices into
// the matched sentence, with End one past the last covered token.
type Node struct {
	Tag      string
	Begin    int
	End      int
	Text     string
	Children []*Node
}

// FirstText returns the text of the first node reachable by following
// the tag path, in document order. Untagged intermediate nodes are
// transparent; tagged nodes must match the path.
func (n *Node) FirstText(path ...string) (string, bool) {
	nodes := n.Find(path...)
	if len(nodes) == 0 {
		return "", false
	}
	return nodes[0].Text, true
}

// AllText returns the texts of every node reachable by the tag path, in
// document order. Duplicates are retained.
func (n *Node) AllText(path ...string) []string {
	var out []string
	for _, m := range n.Find(path...) {
		out = append(out, m.Text)
	}
	return out
}

// Find returns every descendant node matching the tag path.
func (n *Node) Find(path ...string) []*Node {
	if len(path) == 0 {
		return []*Node{n}
	}
	var out []*Node
	var walk func(cur *Node, rest []string)
	walk = func(cur *Node, rest []string) {
		for _, ch := range cur.Children {
			switch {
			case ch.Tag == rest[0] && len(rest) == 1:
				out = append(out, ch)
			case ch.Tag == rest[0]:
				walk(ch, rest[1:])
			case ch.Tag == "":
				walk(ch, rest)
			}
		}
	}
	walk(n, path)
	return out
}

// String renders the tree in a compact s-expression form, for debugging
// and test failure output.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if len(n.Children) == 0 {
		if n.Tag != "" {
			b.WriteString("(" + n.Tag + " " + n.Text + ")")
		} else {
			b.WriteString(n.Text)
		}
		return
	}
	b.WriteString("(")
	if n.Tag != "" {
		b.WriteString(n.Tag)
	} else {
		b.WriteString("_")
	}
	for _, ch := range n.Children {
		b.WriteString(" ")
		ch.write(b)
	}
	b.WriteString(")")
}
