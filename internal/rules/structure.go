package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/extract"
)

var requiredChapters = []docmodel.SectionKey{
	docmodel.Einleitung,
	docmodel.Theorie,
	docmodel.Methode,
	docmodel.Ergebnisse,
	docmodel.Diskussion,
	docmodel.Fazit,
	docmodel.Literatur,
}

var expectedOrder = []docmodel.SectionKey{
	docmodel.Einleitung,
	docmodel.Theorie,
	docmodel.Methode,
	docmodel.Ergebnisse,
	docmodel.Diskussion,
	docmodel.Fazit,
}

type requiredChaptersRule struct{ meta }

// RequiredChapters checks that every core chapter was segmented.
func RequiredChapters() Rule {
	return requiredChaptersRule{meta{
		id:          "STRUCT-007",
		category:    CategoryStructure,
		severity:    docmodel.SeverityError,
		description: "All core chapters are present",
	}}
}

func (r requiredChaptersRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	var missing []string
	for _, k := range requiredChapters {
		if !doc.HasSection(k) {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		return r.one(docmodel.SeverityError,
			"Missing required chapters: "+strings.Join(missing, ", "),
			"Found: "+sectionKeysOrNone(doc))
	}
	return r.one(docmodel.SeverityInfo, "All required chapters found", "Chapters: "+sectionKeysOrNone(doc))
}

type chapterOrderRule struct{ meta }

// ChapterOrderPlausible checks the core chapters of a structured document.
func ChapterOrderPlausible() Rule {
	return chapterOrderRule{meta{
		id:          "STRUCT-008",
		category:    CategoryStructure,
		severity:    docmodel.SeverityWarn,
		description: "Chapter sequence is plausible",
	}}
}

func (r chapterOrderRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	var present []string
	for _, k := range expectedOrder {
		if doc.HasSection(k) {
			present = append(present, string(k))
		}
	}
	if len(present) < 3 {
		return r.one(docmodel.SeverityInfo,
			"Too few chapters recognized to judge their order",
			"Recognized: "+orNone(present))
	}
	var missing []string
	for _, k := range []docmodel.SectionKey{docmodel.Theorie, docmodel.Methode, docmodel.Ergebnisse, docmodel.Diskussion} {
		if !doc.HasSection(k) {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		return r.one(docmodel.SeverityWarn,
			"Chapter sequence is incomplete: "+strings.Join(missing, ", ")+" not recognized",
			"Recognized: "+strings.Join(present, ", "))
	}
	return r.one(docmodel.SeverityInfo, "Core chapters are present", "Recognized: "+strings.Join(present, ", "))
}

type chapterBalanceRule struct{ meta }

// ChapterLengthBalanced flags a large spread between section word counts.
func ChapterLengthBalanced() Rule {
	return chapterBalanceRule{meta{
		id:          "STRUCT-011",
		category:    CategoryStructure,
		severity:    docmodel.SeverityWarn,
		description: "Chapter lengths are roughly balanced",
	}}
}

func (r chapterBalanceRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if len(doc.Sections) < 3 {
		return r.one(docmodel.SeverityInfo, "Too few chapters recognized to compare lengths", "")
	}
	var parts []string
	minW, maxW := -1, 0
	for _, k := range doc.SectionKeys() {
		wc := doc.Sections[docmodel.SectionKey(k)].WordCount
		parts = append(parts, fmt.Sprintf("%s: %d", k, wc))
		if minW < 0 || wc < minW {
			minW = wc
		}
		if wc > maxW {
			maxW = wc
		}
	}
	evidence := strings.Join(parts, " | ")
	if minW > 0 && float64(maxW)/float64(minW) >= 3 {
		return r.one(docmodel.SeverityWarn,
			fmt.Sprintf("Chapter lengths differ strongly (longest/shortest = %.1f)", float64(maxW)/float64(minW)),
			evidence)
	}
	return r.one(docmodel.SeverityInfo, "Chapter lengths are roughly balanced", evidence)
}

var (
	conclusionAliases = []string{
		"fazit und ausblick", "schluss und ausblick", "zusammenfassung und ausblick",
		"schlussfolgerungen", "schlussfolgerung", "conclusions", "conclusion",
		"fazit", "schluss", "zusammenfassung", "summary", "ausblick",
	}
	conclusionLineRe = regexp.MustCompile(`(?mi)^\s*\d*(?:\.\d+)*\s*(fazit|schluss|conclusion|zusammenfassung)\s*$`)
)

type conclusionRule struct{ meta }

// ConclusionExists looks for a concluding chapter by key, title or line.
func ConclusionExists() Rule {
	return conclusionRule{meta{
		id:          "STRUCT-012",
		category:    CategoryStructure,
		severity:    docmodel.SeverityError,
		description: "A conclusion chapter exists",
	}}
}

func (r conclusionRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if sec := doc.Section(docmodel.Fazit); sec != nil && strings.TrimSpace(sec.Text) != "" {
		return r.one(docmodel.SeverityInfo, "Conclusion chapter found", "Title: "+sec.Title)
	}
	if sec := sectionByAliases(doc, conclusionAliases); sec != nil {
		return r.one(docmodel.SeverityInfo, "Conclusion chapter found by title", "Title: "+sec.Title)
	}
	if m := conclusionLineRe.FindString(doc.FullText()); m != "" {
		return r.one(docmodel.SeverityWarn,
			"A conclusion heading appears in the text but was not segmented as a chapter",
			"Line: "+strings.TrimSpace(m))
	}
	return r.one(docmodel.SeverityError, "No conclusion chapter found", "Chapters: "+sectionKeysOrNone(doc))
}

var (
	abstractAliases = []string{"executive summary", "abstract", "kurzfassung", "zusammenfassung"}
	abstractWordRe  = regexp.MustCompile(`(?i)\b(abstract|kurzfassung|executive summary)\b`)
	abstractCueRe   = regexp.MustCompile(`(?i)\b(ziel|zielsetzung|method|methode|ergebnis|results|this thesis|diese arbeit)\b`)
)

type abstractRule struct{ meta }

// AbstractExists looks for an abstract section, label or summary block.
func AbstractExists() Rule {
	return abstractRule{meta{
		id:          "STRUCT-013",
		category:    CategoryStructure,
		severity:    docmodel.SeverityWarn,
		description: "An abstract is present",
	}}
}

func (r abstractRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if sec := doc.Section(docmodel.Abstract); sec != nil {
		return r.abstractSection(sec)
	}
	if sec := sectionByAliases(doc, abstractAliases); sec != nil && sec.Key != docmodel.Fazit {
		return r.abstractSection(sec)
	}

	paras := doc.Paragraphs
	if len(paras) == 0 {
		return r.one(docmodel.SeverityWarn, "Document has no paragraphs; abstract cannot be checked", "")
	}

	headLen := max(30, int(float64(len(paras))*0.12))
	for _, p := range paras[:min(headLen, len(paras))] {
		if abstractWordRe.MatchString(p) {
			return r.one(docmodel.SeverityInfo, "Abstract label found near the start", "Line: "+truncate(strings.TrimSpace(p), 120))
		}
	}

	if intro := doc.Section(docmodel.Einleitung); intro != nil {
		before := paras[:max(0, min(intro.StartPara-1, len(paras)))]
		tail := before[max(0, len(before)-12):]
		block := extract.JoinNonEmpty(tail)
		words := extract.WordCount(block)
		if words >= 80 && words <= 450 && abstractCueRe.MatchString(block) {
			return r.one(docmodel.SeverityInfo,
				"Summary-like block found before the introduction",
				fmt.Sprintf("Words: %d", words))
		}
	}
	return r.one(docmodel.SeverityWarn, "No abstract found", "")
}

func (r abstractRule) abstractSection(sec *docmodel.Section) []docmodel.Finding {
	evidence := fmt.Sprintf("Title: %s | Words: %d", sec.Title, sec.WordCount)
	if sec.WordCount <= 600 {
		return r.one(docmodel.SeverityInfo, "Abstract found", evidence)
	}
	return r.one(docmodel.SeverityWarn, "Abstract found but it is long (over 600 words)", evidence)
}

var overviewMarkers = []string{
	"aufbau der arbeit",
	"gliederung der arbeit",
	"struktur der arbeit",
	"im folgenden kapitel",
	"diese arbeit ist wie folgt aufgebaut",
	"this thesis is structured",
	"this thesis is organized",
}

type introOverviewRule struct{ meta }

// IntroHasStructureOverview looks for a roadmap paragraph in the introduction.
func IntroHasStructureOverview() Rule {
	return introOverviewRule{meta{
		id:          "STRUCT-014",
		category:    CategoryStructure,
		severity:    docmodel.SeverityInfo,
		description: "The introduction outlines the structure of the thesis",
	}}
}

func (r introOverviewRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	intro := doc.Section(docmodel.Einleitung)
	if intro == nil {
		return r.one(docmodel.SeverityWarn, "No introduction found; structure overview cannot be checked", "")
	}
	hits := containsAny(extract.NormalizeSimple(intro.Text), overviewMarkers)
	if len(hits) > 0 {
		return r.one(docmodel.SeverityInfo, "Introduction outlines the thesis structure", "Markers: "+sample(hits, 4))
	}
	return r.one(docmodel.SeverityWarn, "Introduction does not appear to outline the thesis structure", "")
}
