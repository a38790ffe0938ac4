package container

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/thesischeck/internal/wordml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader handles Markdown files using goldmark. ATX and setext
// headings become heading-styled paragraphs, GFM tables become tbl elements.
type MarkdownReader struct{}

func (p *MarkdownReader) Read(r io.Reader, filename string) (*Container, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []*wordml.Node
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Heading:
				blocks = append(blocks, wordml.Paragraph(wordml.HeadingStyle(node.Level), inlineText(node, src)))
			case *ast.Paragraph, *ast.TextBlock:
				if t := strings.TrimSpace(inlineText(node, src)); t != "" {
					blocks = append(blocks, wordml.Paragraph("", t))
				}
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				if t := strings.TrimSpace(blockLines(node, src)); t != "" {
					blocks = append(blocks, wordml.Paragraph("", t))
				}
			case *east.Table:
				blocks = append(blocks, wordml.Table(tableRows(node, src)))
			case *ast.ThematicBreak, *ast.HTMLBlock:
				// no visible text
			default:
				// lists, list items, block quotes
				walk(c)
			}
		}
	}
	walk(doc)

	return synthesized(filename, blocks), nil
}

// inlineText concatenates the inline text below a block node.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.URL(src))
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

func tableRows(tbl *east.Table, src []byte) [][]string {
	var rows [][]string
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(inlineText(cell, src)))
		}
		rows = append(rows, cells)
	}
	return rows
}
