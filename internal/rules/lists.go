package rules

import (
	"fmt"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/extract"
)

var (
	tocTitles     = []string{"inhaltsverzeichnis", "table of contents", "contents"}
	figListTitles = []string{"abbildungsverzeichnis", "verzeichnis der abbildungen", "list of figures", "figures"}
	tabListTitles = []string{"tabellenverzeichnis", "verzeichnis der tabellen", "list of tables", "tables"}
)

// tocScanSpan is how many paragraphs after the title are inspected.
const tocScanSpan = 40

type tocRule struct{ meta }

// TableOfContentsExists checks for a table of contents title and entries.
func TableOfContentsExists() Rule {
	return tocRule{meta{
		id:          "STRUCT-015",
		category:    CategoryStructure,
		severity:    docmodel.SeverityError,
		description: "A table of contents is present",
	}}
}

func (r tocRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	idx, ok := findLine(doc.Paragraphs, tocTitles)
	if !ok {
		return r.one(docmodel.SeverityError, "No table of contents found", "")
	}
	end := min(len(doc.Paragraphs), idx+1+tocScanSpan)
	lines := 0
	for _, p := range doc.Paragraphs[idx+1 : end] {
		if extract.LooksLikeTOCLine(p) {
			lines++
		}
	}
	evidence := fmt.Sprintf("Position: paragraph %d | TOC lines: %d", idx, lines)
	if lines >= 3 {
		return r.one(docmodel.SeverityInfo, "Table of contents found", evidence)
	}
	return r.one(docmodel.SeverityWarn, "Table of contents title found but few entries follow it", evidence)
}

type figureListRule struct{ meta }

// ListOfFiguresExists requires a list of figures once figures are referenced.
func ListOfFiguresExists() Rule {
	return figureListRule{meta{
		id:          "FORM-039",
		category:    CategoryFormal,
		severity:    docmodel.SeverityError,
		description: "A list of figures exists when figures are used",
	}}
}

func (r figureListRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if len(doc.FigureRefs) == 0 {
		return r.one(docmodel.SeverityInfo, "No figure references; list of figures not required", "")
	}
	evidence := "Figure references: " + sample(doc.FigureRefs, 5)
	if idx, ok := findLine(doc.Paragraphs, figListTitles); ok {
		return r.one(docmodel.SeverityInfo, "List of figures found", fmt.Sprintf("Position: paragraph %d", idx))
	}
	return r.one(docmodel.SeverityError, "Figures are referenced but no list of figures was found", evidence)
}

type tableListRule struct{ meta }

// ListOfTablesExists requires a list of tables once the document has tables.
func ListOfTablesExists() Rule {
	return tableListRule{meta{
		id:          "FORM-040",
		category:    CategoryFormal,
		severity:    docmodel.SeverityError,
		description: "A list of tables exists when tables are used",
	}}
}

func (r tableListRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if doc.TablesCount <= 0 {
		return r.one(docmodel.SeverityInfo, "No tables; list of tables not required", "")
	}
	if idx, ok := findLine(doc.Paragraphs, tabListTitles); ok {
		return r.one(docmodel.SeverityInfo, "List of tables found", fmt.Sprintf("Position: paragraph %d", idx))
	}
	return r.one(docmodel.SeverityError,
		"Tables are present but no list of tables was found",
		fmt.Sprintf("Tables: %d", doc.TablesCount))
}
