package rules

import (
	"fmt"
	"regexp"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

var (
	figureCaptionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?mi)^\s*abbildung\s+\d+\s*[:\.\-–—]\s*\S+`),
		regexp.MustCompile(`(?mi)^\s*abbildung\s+\d+\b\s+\S+`),
	}
	tableCaptionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?mi)^\s*tabelle\s+\d+\s*[:\.\-–—]\s*\S+`),
		regexp.MustCompile(`(?mi)^\s*tabelle\s+\d+\b\s+\S+`),
	}
)

// captions returns the number of distinct caption matches.
func captions(text string, res []*regexp.Regexp) int {
	set := make(map[string]bool)
	for _, re := range res {
		for _, m := range re.FindAllString(text, -1) {
			set[m] = true
		}
	}
	return len(set)
}

type captionsRule struct{ meta }

// CaptionsPresent checks that referenced figures and tables are captioned.
func CaptionsPresent() Rule {
	return captionsRule{meta{
		id:          "FORM-038",
		category:    CategoryFormal,
		severity:    docmodel.SeverityWarn,
		description: "Figures and tables carry captions",
	}}
}

func (r captionsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	text := doc.FullText()
	figs := captions(text, figureCaptionRes)
	tabs := captions(text, tableCaptionRes)
	hasRefs := len(doc.FigureRefs)+len(doc.TableRefs) > 0

	if !hasRefs && figs == 0 && tabs == 0 {
		return r.one(docmodel.SeverityInfo, "No figures or tables mentioned; caption check not relevant", "")
	}
	if hasRefs && figs+tabs == 0 {
		return r.one(docmodel.SeverityWarn,
			"Figures or tables are mentioned but no captions were found",
			"Expected captions like 'Abbildung 1: ...' or 'Tabelle 2 - ...'")
	}
	return r.one(docmodel.SeverityInfo, "Captions for figures and tables appear to be present",
		fmt.Sprintf("Captions: figures=%d | tables=%d", figs, tabs))
}
