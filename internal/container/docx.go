package container

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/thesischeck/internal/wordml"
	"github.com/fumiama/go-docx"
)

const documentPart = "word/document.xml"

// DOCXReader handles .docx files. The body comes from the raw XML part so
// content controls inserted by citation managers are not lost; the table
// count comes from go-docx.
type DOCXReader struct{}

func (p *DOCXReader) Read(r io.Reader, filename string) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	ra := bytes.NewReader(data)

	zr, err := zip.NewReader(ra, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	root, err := readPart(zr, documentPart)
	if err != nil {
		return nil, err
	}
	body := wordml.Body(root)

	return &Container{
		Filename:   filename,
		Body:       body,
		TableCount: countTables(ra, int64(len(data)), body),
	}, nil
}

func readPart(zr *zip.Reader, name string) (*wordml.Node, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	root, err := wordml.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return root, nil
}

// countTables returns the number of top-level tables as go-docx sees them.
// Packages go-docx rejects fall back to counting body-level tbl elements.
func countTables(ra io.ReaderAt, size int64, body *wordml.Node) int {
	if n, err := docxTableCount(ra, size); err == nil {
		return n
	}
	if body == nil {
		return 0
	}
	n := 0
	for _, c := range body.Children {
		if c.Name == "tbl" {
			n++
		}
	}
	return n
}

func docxTableCount(ra io.ReaderAt, size int64) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("go-docx: %v", r)
		}
	}()
	doc, err := docx.Parse(ra, size)
	if err != nil {
		return 0, err
	}
	for _, item := range doc.Document.Body.Items {
		if _, ok := item.(*docx.Table); ok {
			n++
		}
	}
	return n, nil
}
