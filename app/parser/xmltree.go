package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one element of a parsed XML document. Names carry the resolved
// namespace URI in Space, not the prefix used in the source.
type Node struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Node

	// content holds string and *Node values in document order.
	content []any
}

// Element returns the first child with the given name, or nil. It is safe to
// call on a nil node.
func (n *Node) Element(name xml.Name) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Elements returns all children with the given name in document order.
func (n *Node) Elements(name xml.Name) []*Node {
	if n == nil {
		return nil
	}
	var result []*Node
	for _, child := range n.Children {
		if child.Name == name {
			result = append(result, child)
		}
	}
	return result
}

// Attribute returns the named attribute and whether it is present.
func (n *Node) Attribute(name xml.Name) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Text returns the concatenated character data of n and its descendants.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for _, c := range n.content {
		switch v := c.(type) {
		case string:
			b.WriteString(v)
		case *Node:
			v.writeText(b)
		}
	}
}

// DefaultNamespace returns the value of the element's own xmlns declaration.
func (n *Node) DefaultNamespace() string {
	ns, _ := n.Attribute(xml.Name{Local: "xmlns"})
	return ns
}

var errNoRoot = errors.New("document has no root element")

// parseDocument builds an element tree from raw. The text is expected to be
// decoded already, so any declared encoding is read as-is.
func parseDocument(raw string) (*Node, error) {
	d := xml.NewDecoder(strings.NewReader(raw))
	d.Strict = true
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root *Node
	var stack []*Node

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name, Attr: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements: <%s> after <%s>", t.Name.Local, root.Name.Local)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
				parent.content = append(parent.content, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.content = append(top.content, string(t))
			}
		}
	}

	if root == nil {
		return nil, errNoRoot
	}
	return root, nil
}
