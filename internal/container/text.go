package container

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/thesischeck/internal/wordml"
)

// TextReader handles plain text files. Paragraphs are separated by blank
// lines.
type TextReader struct{}

func (p *TextReader) Read(r io.Reader, filename string) (*Container, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []*wordml.Node
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, wordml.Paragraph("", strings.Join(current, " ")))
			current = current[:0]
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return synthesized(filename, blocks), nil
}
