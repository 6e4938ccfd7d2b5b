package entrez

import (
	"encoding/xml"
	"strings"
)

// xmlNode is one node of a namespace-agnostic markup tree. Element names
// are matched on their local part only, ignoring any namespace prefix or
// binding. Character data is kept as unnamed child nodes so mixed content
// stays in document order.
type xmlNode struct {
	name     string // "" for character data nodes
	attrs    []xml.Attr
	children []*xmlNode
	chardata string // set only on character data nodes
}

// parseTree builds an element tree from raw markup. Parsing is tolerant:
// a malformed token ends the walk and the tree built so far is returned,
// so recoverable documents still yield their parsable prefix. Unparsable
// input yields an empty tree, never an error.
func parseTree(raw string) *xmlNode {
	root := &xmlNode{}
	if strings.TrimSpace(raw) == "" {
		return root
	}

	dec := xml.NewDecoder(strings.NewReader(raw))
	dec.Strict = false

	stack := []*xmlNode{root}
	for {
		tok, err := dec.Token()
		if err != nil {
			// EOF or a fatal syntax error: keep the partial tree.
			return root
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &xmlNode{chardata: string(t)})
		}
	}
}

// attr returns the value of the attribute with the given local name, or "".
func (n *xmlNode) attr(local string) string {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// find returns all descendant elements with the given local name, in
// document order.
func (n *xmlNode) find(local string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.children {
		if c.name == "" {
			continue
		}
		if c.name == local {
			out = append(out, c)
		}
		out = append(out, c.find(local)...)
	}
	return out
}

// childrenNamed returns direct child elements with the given local name.
func (n *xmlNode) childrenNamed(local string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.children {
		if c.name == local {
			out = append(out, c)
		}
	}
	return out
}

// text returns the concatenated character data of the subtree, in document
// order.
func (n *xmlNode) text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *xmlNode) writeText(b *strings.Builder) {
	if n.name == "" {
		b.WriteString(n.chardata)
		return
	}
	for _, c := range n.children {
		c.writeText(b)
	}
}

// firstText returns the trimmed text of the first descendant element with
// the given local name, or "".
func (n *xmlNode) firstText(local string) string {
	found := n.find(local)
	if len(found) == 0 {
		return ""
	}
	return strings.TrimSpace(found[0].text())
}
