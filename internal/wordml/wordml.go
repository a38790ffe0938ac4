// Package wordml holds a namespace-agnostic element tree for WordprocessingML
// bodies. Element and attribute names are local names ("p", "tbl", "val").
package wordml

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Node is one element of the raw document tree.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string // character data, only set on leaf elements such as <w:t>
	Children []*Node
}

// Parse decodes an XML document into a tree rooted at its document element.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var stack []*Node
	var root *Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				// Whitespace between child elements is formatting, not content.
				if len(top.Children) > 0 {
					top.Text = ""
				}
				stack = stack[:len(stack)-1]
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("decode xml: empty document")
	}
	return root, nil
}

// Attr returns the attribute value or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find follows a path of direct-child names, e.g. Find("pPr", "pStyle").
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Descendants returns all descendants with the given name in document order.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if c.Name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// Body locates the <body> element anywhere below n.
func Body(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Name == "body" {
		return n
	}
	for _, c := range n.Children {
		if b := Body(c); b != nil {
			return b
		}
	}
	return nil
}

// Document wraps children in document/body elements.
func Document(children ...*Node) *Node {
	return &Node{Name: "document", Children: []*Node{{Name: "body", Children: children}}}
}

// Paragraph builds a <p> with an optional style id and a single text run.
func Paragraph(style, text string) *Node {
	p := &Node{Name: "p"}
	if style != "" {
		p.Children = append(p.Children, &Node{Name: "pPr", Children: []*Node{
			{Name: "pStyle", Attrs: map[string]string{"val": style}},
		}})
	}
	p.Children = append(p.Children, &Node{Name: "r", Children: []*Node{{Name: "t", Text: text}}})
	return p
}

// ListParagraph builds a styled paragraph carrying a native list level.
func ListParagraph(style string, ilvl int, text string) *Node {
	p := Paragraph(style, text)
	ppr := p.Child("pPr")
	if ppr == nil {
		ppr = &Node{Name: "pPr"}
		p.Children = append([]*Node{ppr}, p.Children...)
	}
	ppr.Children = append(ppr.Children, &Node{Name: "numPr", Children: []*Node{
		{Name: "ilvl", Attrs: map[string]string{"val": strconv.Itoa(ilvl)}},
		{Name: "numId", Attrs: map[string]string{"val": "1"}},
	}})
	return p
}

// Table builds a <tbl> with one paragraph per cell.
func Table(rows [][]string) *Node {
	tbl := &Node{Name: "tbl"}
	for _, row := range rows {
		tr := &Node{Name: "tr"}
		for _, cell := range row {
			tr.Children = append(tr.Children, &Node{Name: "tc", Children: []*Node{Paragraph("", cell)}})
		}
		tbl.Children = append(tbl.Children, tr)
	}
	return tbl
}

// HeadingStyle returns the style id used for synthesized headings.
func HeadingStyle(level int) string {
	if level < 1 {
		level = 1
	}
	return "Heading" + strconv.Itoa(level)
}

// TextContent concatenates every <t> run below n.
func TextContent(n *Node) string {
	var sb strings.Builder
	for _, t := range n.Descendants("t") {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

const mainNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Encode writes n as WordprocessingML with every element and attribute in
// the w: namespace.
func Encode(w io.Writer, n *Node) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return encode(w, n, true)
}

func encode(w io.Writer, n *Node, root bool) error {
	var sb strings.Builder
	sb.WriteString("<w:" + n.Name)
	if root {
		sb.WriteString(` xmlns:w="` + mainNamespace + `"`)
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" w:" + k + `="`)
		xml.EscapeText(&sb, []byte(n.Attrs[k]))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	xml.EscapeText(&sb, []byte(n.Text))
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := encode(w, c, false); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</w:"+n.Name+">")
	return err
}
