package rules

import (
	"strings"
	"testing"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func section(key docmodel.SectionKey, title, text string) *docmodel.Section {
	return &docmodel.Section{Key: key, Title: title, Text: text, WordCount: extract.WordCount(text)}
}

func withSections(secs ...*docmodel.Section) map[docmodel.SectionKey]*docmodel.Section {
	m := make(map[docmodel.SectionKey]*docmodel.Section, len(secs))
	for _, s := range secs {
		m[s.Key] = s
	}
	return m
}

func thesisWithoutTheory() *docmodel.Document {
	return extract.FromParagraphs("thesis.docx", []string{
		"1 Einleitung", "Kurzer Einleitungstext.",
		"2 Methode", "Wir befragten Personen.",
		"3 Ergebnisse", "Die Werte stiegen.",
		"4 Diskussion", "Das bedeutet etwas.",
		"5 Fazit", "Kurz gesagt.",
		"6 Literaturverzeichnis", "[1] Quelle.",
	}, extract.Options{})
}

func only(t *testing.T, fs []docmodel.Finding) docmodel.Finding {
	t.Helper()
	require.Len(t, fs, 1)
	return fs[0]
}

func TestRegistry_OrderAndIDs(t *testing.T) {
	ids := IDs(Registry())

	require.Len(t, ids, 31)
	assert.Equal(t, "STRUCT-007", ids[0])
	assert.Equal(t, "STRUCT-015", ids[1])
	assert.Equal(t, "RES-026", ids[22])
	assert.Equal(t, "LIT-037", ids[30])

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestDescribe(t *testing.T) {
	ds := Describe(Registry())
	require.Len(t, ds, 31)
	assert.Equal(t, "STRUCT-007", ds[0].ID)
	assert.Equal(t, CategoryStructure, ds[0].Category)
	assert.Equal(t, docmodel.SeverityError, ds[0].Severity)
	for _, d := range ds {
		assert.NotEmpty(t, d.Description, d.ID)
	}
}

func TestRules_ReportOnEveryInput(t *testing.T) {
	docs := map[string]*docmodel.Document{
		"zero":     {},
		"empty":    extract.FromParagraphs("empty.docx", nil, extract.Options{}),
		"thesis":   thesisWithoutTheory(),
		"textonly": extract.FromParagraphs("plain.txt", []string{"Nur ein Satz ohne Struktur."}, extract.Options{}),
	}
	for name, doc := range docs {
		for _, r := range Registry() {
			for _, ai := range []*docmodel.Annotations{nil, {ResearchQuestion: "Wie wirkt Lernen?"}} {
				fs := r.Evaluate(doc, ai)
				require.NotEmpty(t, fs, "%s on %s", r.ID(), name)
				for _, f := range fs {
					assert.Equal(t, r.ID(), f.RuleID)
					assert.Equal(t, r.Category(), f.Category)
					assert.NotEmpty(t, f.Message)
				}
			}
		}
	}
}

func TestRequiredChapters_MissingTheory(t *testing.T) {
	f := only(t, RequiredChapters().Evaluate(thesisWithoutTheory(), nil))

	assert.Equal(t, docmodel.SeverityError, f.Severity)
	assert.Equal(t, "Missing required chapters: theorie", f.Message)
	assert.Equal(t, "Found: diskussion, einleitung, ergebnisse, fazit, literatur, methode", f.Evidence)
}

func TestRequiredChapters_AllPresent(t *testing.T) {
	var secs []*docmodel.Section
	for _, k := range requiredChapters {
		secs = append(secs, section(k, string(k), "text"))
	}
	f := only(t, RequiredChapters().Evaluate(&docmodel.Document{Sections: withSections(secs...)}, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
}

func TestTableOfContents(t *testing.T) {
	doc := &docmodel.Document{Paragraphs: []string{
		"Inhaltsverzeichnis", "1 Einleitung 3", "2 Methode 5", "3 Fazit 9", "Einleitung",
	}}
	f := only(t, TableOfContentsExists().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.Equal(t, "Position: paragraph 0 | TOC lines: 3", f.Evidence)

	doc = &docmodel.Document{Paragraphs: []string{"Inhaltsverzeichnis", "Einleitung"}}
	assert.Equal(t, docmodel.SeverityWarn, only(t, TableOfContentsExists().Evaluate(doc, nil)).Severity)

	doc = &docmodel.Document{Paragraphs: []string{"Einleitung"}}
	assert.Equal(t, docmodel.SeverityError, only(t, TableOfContentsExists().Evaluate(doc, nil)).Severity)
}

func TestHeadingHierarchy_JumpAndLevelMismatch(t *testing.T) {
	doc := &docmodel.Document{Headings: []docmodel.Heading{
		{Text: "Einleitung", Number: "1", Level: 1},
		{Text: "Methode", Number: "3", Level: 1},
		{Text: "Design", Number: "3.1", Level: 1},
	}}
	fs := HeadingHierarchy().Evaluate(doc, nil)

	require.Len(t, fs, 2)
	assert.Contains(t, fs[0].Message, "1 followed by 3")
	assert.Contains(t, fs[1].Message, "'3.1 Design'")
	assert.Equal(t, "Expected level: 2, detected: 1", fs[1].Evidence)
}

func TestHeadingHierarchy_Consistent(t *testing.T) {
	doc := &docmodel.Document{Headings: []docmodel.Heading{
		{Text: "A", Number: "1", Level: 1},
		{Text: "B", Number: "1.1", Level: 2},
		{Text: "C", Number: "1.2", Level: 2},
		{Text: "D", Number: "2", Level: 1},
	}}
	f := only(t, HeadingHierarchy().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.Equal(t, "Numbered headings: 4", f.Evidence)
}

func TestHeadingDepth(t *testing.T) {
	doc := &docmodel.Document{Headings: []docmodel.Heading{
		{Text: "A", Number: "1", Level: 1},
		{Text: "Tief", Number: "1.1.1.1.1", Level: 5},
	}}
	f := only(t, HeadingDepth().Evaluate(doc, nil))
	assert.Contains(t, f.Message, "5 levels")
	assert.Equal(t, "Deepest example: 1.1.1.1.1 Tief", f.Evidence)
}

func TestHeadingsNumbered(t *testing.T) {
	kurz := docmodel.Heading{Text: "Kurzfassung", Level: 1}
	ch1 := docmodel.Heading{Text: "Einleitung", Number: "1", Level: 1}
	ch2 := docmodel.Heading{Text: "Methode", Number: "2", Level: 1}

	cases := []struct {
		name     string
		headings []docmodel.Heading
		want     docmodel.Severity
		evidence string
	}{
		{"front matter allowed", []docmodel.Heading{kurz, ch1, ch2}, docmodel.SeverityInfo, ""},
		{"unnumbered body chapter", []docmodel.Heading{kurz, ch1, ch2, {Text: "Anhang", Level: 1}}, docmodel.SeverityError, "Examples: Anhang"},
		{"odd front matter", []docmodel.Heading{{Text: "Vorbemerkung", Level: 1}, ch1}, docmodel.SeverityWarn, "Examples: Vorbemerkung"},
		{"no chapter one", []docmodel.Heading{ch2}, docmodel.SeverityError, "Chapter 1 must be formatted as a level 1 heading"},
		{"no headings", nil, docmodel.SeverityError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := only(t, HeadingsNumbered().Evaluate(&docmodel.Document{Headings: tc.headings}, nil))
			assert.Equal(t, tc.want, f.Severity)
			assert.Equal(t, tc.evidence, f.Evidence)
		})
	}
}

func TestHeadingNumberingNoGaps(t *testing.T) {
	doc := &docmodel.Document{Headings: []docmodel.Heading{
		{Text: "Einleitung", Number: "1", Level: 1},
		{Text: "Grundlagen", Number: "2", Level: 1},
		{Text: "Begriffe", Number: "2.1", Level: 2},
		{Text: "Modelle", Number: "2.3", Level: 2},
		{Text: "Fazit", Number: "4", Level: 1},
	}}
	f := only(t, HeadingNumberingNoGaps().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityError, f.Severity)
	assert.Equal(t,
		"level 1 expected 3, found 4 ('Fazit') | level 2 in chapter 2 expected 2.2, found 2.3 ('Modelle')",
		f.Evidence)

	doc.Headings[3].Number = "2.2"
	doc.Headings[4].Number = "3"
	assert.Equal(t, docmodel.SeverityInfo, only(t, HeadingNumberingNoGaps().Evaluate(doc, nil)).Severity)
}

func questionDoc() *docmodel.Document {
	return extract.FromParagraphs("rq.docx", []string{
		"1 Einleitung",
		"Die Forschungsfrage lautet: Wie beeinflusst Homeoffice die Produktivität von Teams?",
		"2 Ergebnisse",
		"Homeoffice steigert die Produktivität der Teams deutlich.",
		"3 Diskussion",
		"Die Befunde zeigen Grenzen.",
	}, extract.Options{})
}

func TestKeyTerms(t *testing.T) {
	terms := keyTerms("Die Forschungsfrage lautet: Wie beeinflusst Homeoffice die Produktivität von Teams?", maxKeyTerms)
	assert.Equal(t, []string{"produktivitat", "beeinflusst", "homeoffice", "lautet", "teams"}, terms)

	assert.Empty(t, keyTerms("für über", maxKeyTerms))
}

func TestNormalizeTerms(t *testing.T) {
	assert.Equal(t, "uber-große test", normalizeTerms("  Über–Größe  Test! "))
}

func TestSpellingVariants(t *testing.T) {
	tokens := map[string]bool{"e-learning": true, "elearning": true, "lernen": true}
	assert.Equal(t, []string{"elearning"}, spellingVariants(tokens, "e-learning"))

	tokens = map[string]bool{"modell": true, "modelle": true, "modellierung": true}
	assert.Equal(t, []string{"modelle"}, spellingVariants(tokens, "modell"))
}

func TestResearchQuestionRules_TextScan(t *testing.T) {
	doc := questionDoc()

	f := only(t, ResearchQuestionExists().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.True(t, strings.HasPrefix(f.Evidence, "Die Forschungsfrage lautet"))

	assert.Equal(t, docmodel.SeverityInfo, only(t, ResearchQuestionInIntro().Evaluate(doc, nil)).Severity)
	assert.Equal(t, docmodel.SeverityInfo, only(t, ResearchKeyTermsConsistent().Evaluate(doc, nil)).Severity)

	f = only(t, ResearchQuestionInResults().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.Equal(t, "Hits: produktivitat, homeoffice, teams", f.Evidence)

	f = only(t, ResearchQuestionInDiscussion().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Contains(t, f.Evidence, "Hits: none")
}

func TestResearchQuestionRules_PreferAnnotation(t *testing.T) {
	ai := &docmodel.Annotations{ResearchQuestion: "Wie wirkt Gamification auf Motivation?"}
	f := only(t, ResearchKeyTermsConsistent().Evaluate(questionDoc(), ai))

	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Contains(t, f.Message, "gamification")
	assert.Contains(t, f.Message, "motivation")
}

func TestResearchQuestionExists_Missing(t *testing.T) {
	doc := &docmodel.Document{Paragraphs: []string{"Hier steht nichts Relevantes."}}
	assert.Equal(t, docmodel.SeverityError, only(t, ResearchQuestionExists().Evaluate(doc, nil)).Severity)
}

func TestChapterRules(t *testing.T) {
	doc := &docmodel.Document{Sections: withSections(
		section(docmodel.Einleitung, "Einleitung", strings.Repeat("wort ", 100)),
		section(docmodel.Methode, "Methode", strings.Repeat("wort ", 300)),
		section(docmodel.Fazit, "Fazit", strings.Repeat("wort ", 50)),
	)}

	f := only(t, ChapterOrderPlausible().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Contains(t, f.Message, "theorie, ergebnisse, diskussion")

	f = only(t, ChapterLengthBalanced().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Equal(t, "einleitung: 100 | fazit: 50 | methode: 300", f.Evidence)
}

func TestMethodRules(t *testing.T) {
	long := strings.Repeat("wort ", 320) + "Stichprobe Fragebogen Interview"
	doc := &docmodel.Document{Sections: withSections(section(docmodel.Methode, "Methodik", long))}
	assert.Equal(t, docmodel.SeverityInfo, only(t, MethodDetailSufficient().Evaluate(doc, nil)).Severity)
	assert.Equal(t, "Title: Methodik", only(t, MethodChapterExists().Evaluate(doc, nil)).Evidence)

	doc = &docmodel.Document{Sections: withSections(section(docmodel.Methode, "Methodik", "Kurz."))}
	f := only(t, MethodDetailSufficient().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Equal(t, "Words: 1 | Keyword hits: 0 (none)", f.Evidence)
}

func TestResultsDiscussionSeparated(t *testing.T) {
	doc := &docmodel.Document{Sections: withSections(
		section(docmodel.Ergebnisse, "Ergebnisse", "Das bedeutet, somit und folglich ist die Interpretation klar."),
		section(docmodel.Diskussion, "Diskussion", "Im Vergleich zur Literatur."),
	)}
	f := only(t, ResultsDiscussionSeparated().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Contains(t, f.Evidence, "Results hits: 4")
}

func TestFiguresTablesReferenced(t *testing.T) {
	doc := &docmodel.Document{TablesCount: 2, FigureRefs: []string{"Abbildung 1"}}
	f := only(t, FiguresTablesReferenced().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityError, f.Severity)
	assert.Equal(t, "Tables: 2", f.Evidence)

	fs := FiguresTablesReferenced().Evaluate(&docmodel.Document{TablesCount: 1}, nil)
	require.Len(t, fs, 2)
	assert.Equal(t, docmodel.SeverityInfo, fs[1].Severity)
}

func TestExpandCitationBlock(t *testing.T) {
	assert.Equal(t, []string{"1", "3", "4", "5"}, expandCitationBlock("1, 3–5"))
	assert.Equal(t, []string{"2", "1"}, expandCitationBlock("2-1"))
	assert.Equal(t, []string{"1", "500"}, expandCitationBlock("1-500"))
	assert.Equal(t, []string{"7"}, expandCitationBlock("7, 7"))
	assert.Equal(t, []string{"12"}, expandCitationBlock("S. 12"))
}

func TestCitationsAgainstReferences(t *testing.T) {
	lit := "[1] Alpha 2019\n[3] Gamma 2018\nMüller, A. 2020. Titel."
	doc := &docmodel.Document{
		Paragraphs: []string{"Wie gezeigt [1, 2] und (Müller, 2020).", "Literaturverzeichnis", "[1] Alpha 2019", "[3] Gamma 2018", "Müller, A. 2020. Titel."},
		Sections:   withSections(section(docmodel.Literatur, "Literaturverzeichnis", lit)),
	}

	f := only(t, CitationsInReferenceList().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityError, f.Severity)
	assert.Equal(t, "Missing [n]: 2", f.Evidence)

	assert.Equal(t, docmodel.SeverityInfo, only(t, NoUncitedReferences().Evaluate(doc, nil)).Severity)
	assert.Equal(t, docmodel.SeverityWarn, only(t, CitationStyleConsistent().Evaluate(doc, nil)).Severity)
	assert.Equal(t, docmodel.SeverityInfo, only(t, LiteratureExists().Evaluate(doc, nil)).Severity)
}

func TestNoUncitedReferences(t *testing.T) {
	doc := &docmodel.Document{
		Paragraphs: []string{"Text [1]."},
		Sections:   withSections(section(docmodel.Literatur, "Literatur", "1. Alpha 2019\n2. Beta 2020")),
	}
	f := only(t, NoUncitedReferences().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Equal(t, "Uncited [n]: 2", f.Evidence)
}

func TestLiteratureExists_Fallback(t *testing.T) {
	doc := &docmodel.Document{Paragraphs: []string{"Text", "[1] A", "[2] B", "[3] C"}}
	f := only(t, LiteratureExists().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Equal(t, "Entries: 3 | Examples: [1] A | [2] B | [3] C", f.Evidence)

	f = only(t, LiteratureExists().Evaluate(&docmodel.Document{Paragraphs: []string{"Text"}}, nil))
	assert.Equal(t, docmodel.SeverityError, f.Severity)
}

func TestCitationDensity(t *testing.T) {
	doc := &docmodel.Document{WordCountTotal: 3000, Citations: docmodel.CitationSignals{NumericCount: 2}}
	f := only(t, CitationDensity().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Contains(t, f.Evidence, "approx. 1 per 1500 words")

	doc.Citations.AuthorYearCount = 8
	assert.Equal(t, docmodel.SeverityInfo, only(t, CitationDensity().Evaluate(doc, nil)).Severity)

	doc.WordCountTotal = 1000
	assert.Equal(t, docmodel.SeverityInfo, only(t, CitationDensity().Evaluate(doc, nil)).Severity)
}

func TestReferenceYears(t *testing.T) {
	doc := &docmodel.Document{Sections: withSections(section(docmodel.Literatur, "Literatur", "Alpha 2010\nBeta 2015\nGamma 2010"))}
	f := only(t, ReferenceYears().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Equal(t, "Years: 2010–2015 | distinct: 2", f.Evidence)
}

func TestListsOfFiguresAndTables(t *testing.T) {
	doc := &docmodel.Document{Paragraphs: []string{"Siehe Abbildung 1."}, FigureRefs: []string{"Abbildung 1"}}
	assert.Equal(t, docmodel.SeverityError, only(t, ListOfFiguresExists().Evaluate(doc, nil)).Severity)

	doc.Paragraphs = append([]string{"Abbildungsverzeichnis"}, doc.Paragraphs...)
	assert.Equal(t, docmodel.SeverityInfo, only(t, ListOfFiguresExists().Evaluate(doc, nil)).Severity)

	assert.Equal(t, docmodel.SeverityInfo, only(t, ListOfTablesExists().Evaluate(doc, nil)).Severity)
	doc.TablesCount = 1
	assert.Equal(t, docmodel.SeverityError, only(t, ListOfTablesExists().Evaluate(doc, nil)).Severity)
}

func TestConclusionExists(t *testing.T) {
	doc := &docmodel.Document{Paragraphs: []string{"Text", "5 Fazit", "Schluss."}}
	f := only(t, ConclusionExists().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Equal(t, "Line: 5 Fazit", f.Evidence)

	doc.Sections = withSections(section(docmodel.Fazit, "Fazit", "Alles gut."))
	assert.Equal(t, docmodel.SeverityInfo, only(t, ConclusionExists().Evaluate(doc, nil)).Severity)
}

func TestAbstractExists(t *testing.T) {
	long := section(docmodel.Abstract, "Abstract", strings.Repeat("wort ", 700))
	f := only(t, AbstractExists().Evaluate(&docmodel.Document{Sections: withSections(long)}, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)

	doc := &docmodel.Document{Paragraphs: []string{"Titelblatt", "Kurzfassung", "Diese Arbeit zeigt etwas."}}
	assert.Equal(t, docmodel.SeverityInfo, only(t, AbstractExists().Evaluate(doc, nil)).Severity)

	doc = &docmodel.Document{Paragraphs: []string{"Titelblatt"}}
	assert.Equal(t, docmodel.SeverityWarn, only(t, AbstractExists().Evaluate(doc, nil)).Severity)
}

func TestIntroHasStructureOverview(t *testing.T) {
	doc := &docmodel.Document{Sections: withSections(
		section(docmodel.Einleitung, "Einleitung", "Der Aufbau der Arbeit ist wie folgt."),
	)}
	f := only(t, IntroHasStructureOverview().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.Equal(t, "Markers: aufbau der arbeit", f.Evidence)
}

func TestAbbreviations(t *testing.T) {
	assert.Equal(t, []string{"API", "HTTP", "ÄRZTE"}, acronyms("Die API und das HTTP sowie ÄRZTE UND ODER"))

	many := "AB CD EF GH IJ KL MN OP QR ST UV WX YZ"
	f := only(t, AbbreviationsListExists().Evaluate(&docmodel.Document{Paragraphs: []string{many}}, nil))
	assert.Equal(t, docmodel.SeverityWarn, f.Severity)
	assert.Contains(t, f.Evidence, "Distinct acronyms: 13")

	list := []string{"Abkürzungsverzeichnis", "KI: Künstliche Intelligenz", "ML: Maschinelles Lernen",
		"NLP - Natural Language Processing", "API = Schnittstelle", "UI: Oberfläche"}
	f = only(t, AbbreviationsListExists().Evaluate(&docmodel.Document{Paragraphs: list}, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.Equal(t, "Abbreviation lines: 5", f.Evidence)
}

func TestDefinitionsPresent(t *testing.T) {
	doc := &docmodel.Document{Paragraphs: []string{"Unter Resilienz versteht man die Widerstandskraft."}}
	assert.Equal(t, docmodel.SeverityInfo, only(t, DefinitionsPresent().Evaluate(doc, nil)).Severity)

	doc = &docmodel.Document{Paragraphs: []string{
		"Wir nutzen maschinelles Lernen (ML).",
		"Dazu kommt natural language processing (NLP).",
		"Ein large language model (LLM).",
		"Die application programming interface (API).",
		"Das user interface (UI).",
	}}
	f := only(t, DefinitionsPresent().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.Contains(t, f.Evidence, "ML=Wir nutzen maschinelles Lernen")

	doc = &docmodel.Document{Paragraphs: []string{"Nur Text ohne Erklärung."}}
	assert.Equal(t, docmodel.SeverityWarn, only(t, DefinitionsPresent().Evaluate(doc, nil)).Severity)
}

func TestCaptionsPresent(t *testing.T) {
	doc := &docmodel.Document{Paragraphs: []string{"Siehe Abbildung 1 oben."}, FigureRefs: []string{"Abbildung 1"}}
	assert.Equal(t, docmodel.SeverityWarn, only(t, CaptionsPresent().Evaluate(doc, nil)).Severity)

	doc.Paragraphs = append(doc.Paragraphs, "Abbildung 1: Aufbau der Studie")
	f := only(t, CaptionsPresent().Evaluate(doc, nil))
	assert.Equal(t, docmodel.SeverityInfo, f.Severity)
	assert.Equal(t, "Captions: figures=1 | tables=0", f.Evidence)
}
