// Package container reads document files into a raw WordprocessingML body
// tree plus an independent physical table count.
package container

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/thesischeck/internal/wordml"
)

// Container is the raw material handed to the extractor.
type Container struct {
	Filename   string
	Body       *wordml.Node // nil when the file has no body
	TableCount int
}

// Reader converts raw document bytes into a Container.
type Reader interface {
	Read(r io.Reader, filename string) (*Container, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".txt":      true,
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".pdf":
		return &PDFReader{}, nil
	case ".txt":
		return &TextReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// synthesized wraps builder output the way non-docx readers report it.
func synthesized(filename string, blocks []*wordml.Node) *Container {
	tables := 0
	for _, b := range blocks {
		if b.Name == "tbl" {
			tables++
		}
	}
	return &Container{
		Filename:   filename,
		Body:       wordml.Body(wordml.Document(blocks...)),
		TableCount: tables,
	}
}
