package rules

import (
	"fmt"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

var methodKeywords = []string{
	"stichprobe", "sample", "teilnehmer", "participants",
	"daten", "datenerhebung", "fragebogen", "interview", "beobachtung",
	"analyse", "auswertung", "statistik", "verfahren", "methode",
	"operationalisierung", "hypothese", "messung", "instrument",
	"validität", "reliabilität",
}

var interpretationCues = []string{
	"bedeutet", "impliziert", "daraus folgt", "somit", "folglich",
	"interpretiert", "interpretation", "diskutieren", "diskussion",
	"limitation", "einschränkung", "kritisch",
	"verglichen", "vergleich", "literatur", "studien zeigen",
}

const (
	methodMinWords = 300
	methodMinHits  = 3
)

type methodExistsRule struct{ meta }

// MethodChapterExists requires a dedicated method chapter.
func MethodChapterExists() Rule {
	return methodExistsRule{meta{
		id:          "METH-019",
		category:    CategoryMethod,
		severity:    docmodel.SeverityError,
		description: "A dedicated method chapter exists",
	}}
}

func (r methodExistsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if sec := doc.Section(docmodel.Methode); sec != nil {
		return r.one(docmodel.SeverityInfo, "Method chapter found", "Title: "+sec.Title)
	}
	return r.one(docmodel.SeverityError,
		"No method chapter recognized",
		"Use a heading such as 'Methode' or 'Methodik', or number it, e.g. '3 Methode'")
}

type methodDetailRule struct{ meta }

// MethodDetailSufficient checks method length and methodological vocabulary.
func MethodDetailSufficient() Rule {
	return methodDetailRule{meta{
		id:          "METH-020",
		category:    CategoryMethod,
		severity:    docmodel.SeverityWarn,
		description: "The method chapter is sufficiently detailed",
	}}
}

func (r methodDetailRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	sec := doc.Section(docmodel.Methode)
	if sec == nil {
		return r.one(docmodel.SeverityWarn, "Method chapter not recognized; detail check not possible", "")
	}
	wc := sec.WordCount
	hits := containsAny(strings.ToLower(sec.Text), methodKeywords)
	short := wc < methodMinWords
	sparse := len(hits) < methodMinHits
	detailed := fmt.Sprintf("Words: %d | Keyword hits: %d (%s)", wc, len(hits), orNone(hits))
	brief := fmt.Sprintf("Words: %d | Keyword hits: %d", wc, len(hits))

	switch {
	case short && sparse:
		return r.one(docmodel.SeverityWarn, "Method chapter is very short and lacks detail", detailed)
	case short:
		return r.one(docmodel.SeverityWarn, "Method chapter is rather short", brief)
	case sparse:
		return r.one(docmodel.SeverityWarn, "Method chapter has few typical methodological terms", detailed)
	}
	return r.one(docmodel.SeverityInfo, "Method chapter looks sufficiently detailed", brief)
}

type separationRule struct{ meta }

// ResultsDiscussionSeparated flags interpretive language in the results.
func ResultsDiscussionSeparated() Rule {
	return separationRule{meta{
		id:          "RES-025",
		category:    CategoryResults,
		severity:    docmodel.SeverityWarn,
		description: "Results and discussion are kept separate",
	}}
}

func (r separationRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	res := doc.Section(docmodel.Ergebnisse)
	disc := doc.Section(docmodel.Diskussion)
	if res == nil || disc == nil {
		return r.one(docmodel.SeverityWarn,
			"Results or discussion not recognized; separation check not possible",
			"Recognized: "+strings.Join(doc.SectionKeys(), ", "))
	}
	resHits := containsAny(strings.ToLower(res.Text), interpretationCues)
	discHits := containsAny(strings.ToLower(disc.Text), interpretationCues)
	if len(resHits) >= 4 && len(discHits) >= 2 {
		return r.one(docmodel.SeverityWarn,
			"Results chapter contains much interpretive language; separation from the discussion may be unclear",
			fmt.Sprintf("Results hits: %d (%s) | Discussion hits: %d", len(resHits), strings.Join(resHits, ", "), len(discHits)))
	}
	return r.one(docmodel.SeverityInfo,
		"Results and discussion appear separated",
		fmt.Sprintf("Results hits: %d | Discussion hits: %d", len(resHits), len(discHits)))
}

type referencedRule struct{ meta }

// FiguresTablesReferenced checks that tables and figures are referenced in
// the running text.
func FiguresTablesReferenced() Rule {
	return referencedRule{meta{
		id:          "RES-026",
		category:    CategoryResults,
		severity:    docmodel.SeverityError,
		description: "Tables and figures are referenced in the text",
	}}
}

func (r referencedRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	var findings []docmodel.Finding
	if doc.TablesCount > 0 && len(doc.TableRefs) == 0 {
		findings = append(findings, r.finding(docmodel.SeverityError,
			"Document contains tables but no 'Tabelle <n>' references",
			fmt.Sprintf("Tables: %d", doc.TablesCount)))
	}
	if len(doc.FigureRefs) == 0 {
		findings = append(findings, r.finding(docmodel.SeverityInfo,
			"No 'Abbildung <n>' references found", ""))
	}
	if len(findings) == 0 {
		return r.one(docmodel.SeverityInfo,
			"Tables and figures appear to be referenced",
			fmt.Sprintf("Table refs: %d | Figure refs: %d", len(doc.TableRefs), len(doc.FigureRefs)))
	}
	return findings
}
