package extract

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	figureRefRe  = regexp.MustCompile(`(?i)\bAbbildung\s+\d+\b`)
	tableRefRe   = regexp.MustCompile(`(?i)\bTabelle\s+\d+\b`)
	numericRe    = regexp.MustCompile(`\[([^\]]*?\d[^\]]*?)\]`)
	authorYearRe = regexp.MustCompile(`\([A-ZÄÖÜ][A-Za-zÄÖÜäöüß\-]+,\s*\d{4}\)`)
	etAlRe       = regexp.MustCompile(`(?i)\bet\s+al\.`)
)

// JoinNonEmpty joins the non-empty paragraphs with newlines.
func JoinNonEmpty(paragraphs []string) string {
	var parts []string
	for _, p := range paragraphs {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// ExtractReferences returns the sorted unique "Abbildung n" and
// "Tabelle n" mentions, title-cased.
func ExtractReferences(paragraphs []string) (figures, tables []string) {
	text := JoinNonEmpty(paragraphs)
	caser := cases.Title(language.German)
	collect := func(re *regexp.Regexp) []string {
		out := []string{}
		for _, m := range re.FindAllString(text, -1) {
			out = append(out, caser.String(m))
		}
		slices.Sort(out)
		return slices.Compact(out)
	}
	return collect(figureRefRe), collect(tableRefRe)
}

// ExtractCitationSignals counts bracketed numeric citation blocks,
// "(Surname, YYYY)" citations and "et al." occurrences.
func ExtractCitationSignals(paragraphs []string) docmodel.CitationSignals {
	text := JoinNonEmpty(paragraphs)
	return docmodel.CitationSignals{
		NumericCount:    len(numericRe.FindAllStringIndex(text, -1)),
		AuthorYearCount: len(authorYearRe.FindAllStringIndex(text, -1)),
		EtAlCount:       len(etAlRe.FindAllStringIndex(text, -1)),
	}
}
