package saft

import (
	"strings"
)

// XMLDeclaration heads every rendered document
const XMLDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Attr is an XML attribute
type Attr struct {
	Name  string
	Value string
}

// Node is an element in a document tree. A node either carries text or
// children; when both are set the children win.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// El creates an element with children
func El(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

// Leaf creates an element holding text
func Leaf(name, text string) *Node {
	return &Node{Name: name, Text: text}
}

// Add appends children and returns n
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// WithAttr sets an attribute and returns n
func (n *Node) WithAttr(name, value string) *Node {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Find returns the first direct child named name, or nil
func (n *Node) Find(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML is the only escaping routine; every text node and attribute
// value goes through it during Render.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// Render serializes the tree with the UTF-8 declaration and two-space indentation
func Render(root *Node) string {
	var b strings.Builder
	b.WriteString(XMLDeclaration)
	b.WriteByte('\n')
	writeNode(&b, root, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(EscapeXML(a.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if len(n.Children) == 0 {
		b.WriteString(EscapeXML(n.Text))
	} else {
		b.WriteByte('\n')
		for _, c := range n.Children {
			writeNode(b, c, depth+1)
		}
		b.WriteString(indent)
	}

	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteString(">\n")
}
