package docx

import (
	"encoding/xml"
	"errors"
	"io"
)

// node is a namespace-agnostic element tree of document.xml. Body content
// interleaves paragraphs, tables and containers, so order matters and a
// generic tree is simpler to walk than fixed structs.
type node struct {
	name     string
	attrs    []xml.Attr
	children []*node
	text     string
}

func parseTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	root := &node{}
	stack := []*node{root}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: t.Copy().Attr}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			// Only text elements carry content worth keeping.
			if top.name == "t" {
				top.text += string(t)
			}
		}
	}
	if len(root.children) == 0 {
		return nil, errors.New("empty document")
	}
	return root, nil
}

func (n *node) attr(local string) string {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// child returns the first direct child named local.
func (n *node) child(local string) *node {
	for _, c := range n.children {
		if c.name == local {
			return c
		}
	}
	return nil
}

// find returns the first descendant named local, depth first.
func (n *node) find(local string) *node {
	for _, c := range n.children {
		if c.name == local {
			return c
		}
		if f := c.find(local); f != nil {
			return f
		}
	}
	return nil
}

// val returns the w:val attribute of the named child, if the child exists.
func (n *node) val(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	c := n.child(local)
	if c == nil {
		return "", false
	}
	return c.attr("val"), true
}
