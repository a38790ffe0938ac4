// Package extract turns a raw document body into the logical document model:
// paragraphs, classified headings, named sections and citation signals.
//
// Extraction is heuristic. Missing or malformed structure yields an emptier
// model, never an error.
package extract

import (
	"github.com/dgallion1/thesischeck/internal/container"
	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/wordml"
)

// Extract builds the document model for c.
func Extract(c *container.Container, opts Options) *docmodel.Document {
	opts = opts.WithDefaults()

	paragraphs, headings := paragraphsAndHeadings(c.Body, opts)
	headings = ExcludeTOCHeadings(paragraphs, headings, opts)
	figures, tables := ExtractReferences(paragraphs)

	return &docmodel.Document{
		Filename:       c.Filename,
		Paragraphs:     paragraphs,
		Headings:       headings,
		Sections:       BuildSections(paragraphs, headings),
		WordCountTotal: WordCount(JoinNonEmpty(paragraphs)),
		TablesCount:    c.TableCount,
		FigureRefs:     figures,
		TableRefs:      tables,
		Citations:      ExtractCitationSignals(paragraphs),
	}
}

// FromParagraphs extracts a model from unstyled paragraph texts.
func FromParagraphs(filename string, texts []string, opts Options) *docmodel.Document {
	blocks := make([]*wordml.Node, len(texts))
	for i, t := range texts {
		blocks[i] = wordml.Paragraph("", t)
	}
	return Extract(&container.Container{
		Filename: filename,
		Body:     wordml.Body(wordml.Document(blocks...)),
	}, opts)
}
