package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bforschungsfrage\b`),
	regexp.MustCompile(`(?i)\bfragestellung\b`),
	regexp.MustCompile(`(?i)\bziel dieser arbeit\b`),
	regexp.MustCompile(`(?i)\bzielsetzung\b`),
	regexp.MustCompile(`(?i)\bdiese arbeit untersucht\b`),
	regexp.MustCompile(`(?i)\bdiese arbeit analysiert\b`),
	regexp.MustCompile(`(?i)\bdiese arbeit geht der frage nach\b`),
	regexp.MustCompile(`(?i)\bfolgende frage\b`),
	regexp.MustCompile(`(?i)\bim rahmen dieser arbeit\b.*\bfrage\b`),
}

var (
	dashRe       = regexp.MustCompile(`[\x{2010}-\x{2014}]`)
	nonTermRe    = regexp.MustCompile(`[^a-z0-9äöüß\- ]+`)
	termSpaceRe  = regexp.MustCompile(`\s+`)
	termTokenRe  = regexp.MustCompile(`[a-zäöüß0-9\-]{2,}`)
	stopwordList = []string{
		"der", "die", "das", "ein", "eine", "einer", "eines", "einem", "einen",
		"und", "oder", "aber", "sowie", "als", "wie", "wenn", "dann", "dass", "daß",
		"ist", "sind", "war", "waren", "wird", "werden", "wurde",
		"in", "im", "auf", "an", "am", "aus", "bei", "mit", "ohne", "für", "von", "zu", "zum", "zur",
		"des", "den", "dem", "durch", "über", "unter", "zwischen", "gegen", "um",
		"diese", "dieser", "dieses", "diesem", "diesen",
		"arbeit", "bachelorarbeit", "studie", "untersuchung", "analyse",
		"frage", "forschungsfrage", "ziel", "zielsetzung",
	}
	// stopwords holds the list in token form so "für" matches "fur".
	stopwords = func() map[string]bool {
		m := make(map[string]bool, len(stopwordList))
		for _, w := range stopwordList {
			m[normalizeTerms(w)] = true
		}
		return m
	}()
)

const maxKeyTerms = 8

func mentionsQuestion(text string) bool {
	for _, re := range questionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// normalizeTerms lowercases, strips diacritics and reduces s to letters,
// digits, hyphens and single spaces.
func normalizeTerms(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = dashRe.ReplaceAllString(s, "-")
	s = nonTermRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(termSpaceRe.ReplaceAllString(s, " "))
}

func termTokens(text string) []string {
	return termTokenRe.FindAllString(normalizeTerms(text), -1)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range termTokens(text) {
		set[t] = true
	}
	return set
}

// keyTerms ranks the non-stopword tokens of a question by frequency and
// length. Ties keep first-occurrence order.
func keyTerms(question string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, t := range termTokens(question) {
		if stopwords[t] || len([]rune(t)) < 3 {
			continue
		}
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	score := func(t string) float64 {
		return float64(counts[t]*2) + float64(min(len([]rune(t)), 12))/4
	}
	slices.SortStableFunc(order, func(a, b string) int {
		sa, sb := score(a), score(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	return order[:min(limit, len(order))]
}

// spellingVariants finds tokens that differ from term only by hyphenation
// or a short suffix.
func spellingVariants(tokens map[string]bool, term string) []string {
	base := strings.ReplaceAll(term, "-", "")
	var out []string
	for t := range tokens {
		if t == term {
			continue
		}
		if strings.ReplaceAll(t, "-", "") == base {
			out = append(out, t)
			continue
		}
		if strings.HasPrefix(t, term) || strings.HasPrefix(term, t) {
			if d := len([]rune(t)) - len([]rune(term)); d >= -3 && d <= 3 {
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out[:min(8, len(out))]
}

// questionSource prefers the annotated research question and falls back to
// the first paragraph that mentions one.
func questionSource(doc *docmodel.Document, ai *docmodel.Annotations) string {
	if q := ai.ResearchQuestionOrEmpty(); q != "" {
		return q
	}
	for _, p := range doc.Paragraphs {
		if mentionsQuestion(p) {
			return p
		}
	}
	return ""
}

type questionExistsRule struct{ meta }

// ResearchQuestionExists looks for an explicit research question or goal.
func ResearchQuestionExists() Rule {
	return questionExistsRule{meta{
		id:          "RQ-001",
		category:    CategoryQuestion,
		severity:    docmodel.SeverityError,
		description: "An explicit research question or goal is stated",
	}}
}

func (r questionExistsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	for _, p := range doc.Paragraphs {
		if mentionsQuestion(p) {
			return r.one(docmodel.SeverityInfo, "Research question or goal statement found", truncate(p, 220))
		}
	}
	return r.one(docmodel.SeverityError,
		"No explicit research question or goal statement found",
		"Searched for phrases such as 'Forschungsfrage', 'Ziel dieser Arbeit', 'Diese Arbeit untersucht'")
}

type questionInIntroRule struct{ meta }

// ResearchQuestionInIntro checks that the introduction states the question.
func ResearchQuestionInIntro() Rule {
	return questionInIntroRule{meta{
		id:          "RQ-002",
		category:    CategoryQuestion,
		severity:    docmodel.SeverityWarn,
		description: "The research question appears in the introduction",
	}}
}

func (r questionInIntroRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	intro := doc.Section(docmodel.Einleitung)
	if intro == nil {
		return r.one(docmodel.SeverityWarn,
			"Introduction not recognized; research question placement cannot be checked",
			"Format the introduction title as a real heading or number it, e.g. '1 Einleitung'")
	}
	if mentionsQuestion(intro.Text) {
		return r.one(docmodel.SeverityInfo, "Research question found in the introduction", "Section: "+intro.Title)
	}
	return r.one(docmodel.SeverityWarn, "No research question found in the introduction", "Section: "+intro.Title)
}

type keyTermsRule struct{ meta }

// ResearchKeyTermsConsistent checks that the question's key terms occur in
// the text with a single spelling.
func ResearchKeyTermsConsistent() Rule {
	return keyTermsRule{meta{
		id:          "RQ-003",
		category:    CategoryQuestion,
		severity:    docmodel.SeverityWarn,
		needsAI:     true,
		description: "Key terms of the research question are used consistently",
	}}
}

func (r keyTermsRule) Evaluate(doc *docmodel.Document, ai *docmodel.Annotations) []docmodel.Finding {
	source := questionSource(doc, ai)
	if source == "" {
		return r.one(docmodel.SeverityWarn,
			"No research question found; key terms cannot be extracted",
			"State it explicitly, e.g. 'Die Forschungsfrage lautet: ...'")
	}
	terms := keyTerms(source, maxKeyTerms)
	if len(terms) == 0 {
		return r.one(docmodel.SeverityWarn,
			"No key terms could be derived from the research question",
			"Question: "+truncate(source, 200))
	}

	tokens := tokenSet(strings.Join(doc.Paragraphs, "\n"))
	var missing []string
	for _, t := range terms {
		if !tokens[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return r.one(docmodel.SeverityWarn,
			"Some key terms of the research question do not occur in the text: "+strings.Join(missing, ", "),
			"Terms: "+strings.Join(terms, ", "))
	}

	var parts []string
	for _, t := range terms {
		if vs := spellingVariants(tokens, t); len(vs) > 0 {
			parts = append(parts, fmt.Sprintf("%s → %s", t, strings.Join(vs, ", ")))
		}
	}
	if len(parts) > 0 {
		return r.one(docmodel.SeverityWarn,
			"Possibly inconsistent spellings of key terms found",
			truncate(strings.Join(parts, " | "), 350))
	}
	return r.one(docmodel.SeverityInfo, "Key terms of the research question are used consistently", "Terms: "+strings.Join(terms, ", "))
}

// questionEchoRule checks that a chapter picks up the question's key terms.
type questionEchoRule struct {
	meta
	key   docmodel.SectionKey
	label string
}

// ResearchQuestionInResults checks the results chapter refers back to the question.
func ResearchQuestionInResults() Rule {
	return questionEchoRule{meta: meta{
		id:          "RQ-004",
		category:    CategoryQuestion,
		severity:    docmodel.SeverityWarn,
		needsAI:     true,
		description: "The results chapter refers back to the research question",
	}, key: docmodel.Ergebnisse, label: "results"}
}

// ResearchQuestionInDiscussion checks the discussion refers back to the question.
func ResearchQuestionInDiscussion() Rule {
	return questionEchoRule{meta: meta{
		id:          "RQ-005",
		category:    CategoryQuestion,
		severity:    docmodel.SeverityWarn,
		needsAI:     true,
		description: "The discussion refers back to the research question",
	}, key: docmodel.Diskussion, label: "discussion"}
}

func (r questionEchoRule) Evaluate(doc *docmodel.Document, ai *docmodel.Annotations) []docmodel.Finding {
	sec := doc.Section(r.key)
	if sec == nil {
		return r.one(docmodel.SeverityWarn,
			fmt.Sprintf("The %s chapter was not recognized; reference to the research question cannot be checked", r.label),
			"")
	}
	source := questionSource(doc, ai)
	if source == "" {
		return r.one(docmodel.SeverityWarn,
			fmt.Sprintf("No research question found; reference in the %s cannot be checked", r.label), "")
	}
	terms := keyTerms(source, maxKeyTerms)
	if len(terms) == 0 {
		return r.one(docmodel.SeverityWarn,
			"No key terms could be derived from the research question",
			"Question: "+truncate(source, 200))
	}

	tokens := tokenSet(sec.Text)
	var hits []string
	for _, t := range terms {
		if tokens[t] {
			hits = append(hits, t)
		}
	}
	needed := max(2, int(float64(len(terms))*0.35))
	if len(hits) >= needed {
		return r.one(docmodel.SeverityInfo,
			fmt.Sprintf("The %s chapter refers back to the research question's key terms", r.label),
			"Hits: "+strings.Join(hits, ", "))
	}
	return r.one(docmodel.SeverityWarn,
		fmt.Sprintf("The %s chapter barely refers back to the research question's key terms", r.label),
		fmt.Sprintf("Hits: %s | Terms: %s", orNone(hits), strings.Join(terms, ", ")))
}
