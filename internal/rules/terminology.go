package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

var (
	abbrevSectionAliases = []string{
		"abkürzungsverzeichnis",
		"abkuerzungsverzeichnis",
		"abkürzungen",
		"abkuerzungen",
		"list of abbreviations",
		"abbreviations",
	}
	abbrevTitleRe    = regexp.MustCompile(`(?i)\b(abkürzungsverzeichnis|abkuerzungsverzeichnis|list of abbreviations)\b`)
	abbrevLineRe     = regexp.MustCompile(`^[A-ZÄÖÜ0-9]{2,10}\s*(?:[:=\-–—])\s*\S+`)
	wordTokenRe      = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	acronymRe        = regexp.MustCompile(`^[A-ZÄÖÜ]{2,6}$`)
	abbrevIntroRe    = regexp.MustCompile(`([A-Za-zÄÖÜäöüß][A-Za-zÄÖÜäöüß\- ]{3,80})\s*\(\s*([A-ZÄÖÜ]{2,10})\s*\)`)
	definitionCueRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bunter\s+([A-Za-zÄÖÜäöüß\- ]{3,40})\s+versteht\s+man\b`),
		regexp.MustCompile(`(?i)\bist\s+definiert\s+als\b`),
		regexp.MustCompile(`(?i)\bwird\s+als\b\s+.*\bdefiniert\b`),
		regexp.MustCompile(`(?i)\bdefinition\b`),
		regexp.MustCompile(`(?i)\bbezeichnet\b`),
	}
)

// abbrevListLines counts lines shaped like "MRT – Magnetresonanztomographie".
func abbrevListLines(text string) int {
	n := 0
	for _, ln := range nonEmptyLines(text) {
		if abbrevLineRe.MatchString(ln) {
			n++
		}
	}
	return n
}

// acronyms returns the distinct all-caps words of 2 to 6 letters, sorted.
func acronyms(text string) []string {
	set := make(map[string]bool)
	for _, w := range wordTokenRe.FindAllString(text, -1) {
		if acronymRe.MatchString(w) && w != "UND" && w != "ODER" {
			set[w] = true
		}
	}
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

type abbreviationsRule struct{ meta }

// AbbreviationsListExists looks for a list of abbreviations by title or by
// its line pattern. Documents with few acronyms do not need one.
func AbbreviationsListExists() Rule {
	return abbreviationsRule{meta{
		id:          "TERM-015",
		category:    CategoryTerminology,
		severity:    docmodel.SeverityWarn,
		description: "A list of abbreviations exists when many acronyms are used",
	}}
}

func (r abbreviationsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if sec := sectionByAliases(doc, abbrevSectionAliases); sec != nil {
		return r.one(docmodel.SeverityInfo, "List of abbreviations found", "Title: "+sec.Title)
	}

	text := doc.FullText()
	if abbrevTitleRe.MatchString(text) {
		hits := abbrevListLines(text)
		sev := docmodel.SeverityWarn
		if hits >= 5 {
			sev = docmodel.SeverityInfo
		}
		return r.one(sev, "List of abbreviations appears to be present (title found in the text)",
			fmt.Sprintf("Abbreviation lines: %d", hits))
	}
	if hits := abbrevListLines(text); hits >= 6 {
		return r.one(docmodel.SeverityInfo, "List of abbreviations appears to be present (list pattern found)",
			fmt.Sprintf("Abbreviation lines: %d", hits))
	}

	unique := acronyms(text)
	if len(unique) < 12 {
		return r.one(docmodel.SeverityInfo, "No list of abbreviations found, but few acronyms are used",
			fmt.Sprintf("Distinct acronyms: %d", len(unique)))
	}
	return r.one(docmodel.SeverityWarn, "No list of abbreviations found",
		fmt.Sprintf("Distinct acronyms: %d (e.g. %s)", len(unique), sample(unique, 10)))
}

type definitionsRule struct{ meta }

// DefinitionsPresent looks for definition phrases and introduced
// abbreviations such as "Magnetresonanztomographie (MRT)".
func DefinitionsPresent() Rule {
	return definitionsRule{meta{
		id:          "TERM-016",
		category:    CategoryTerminology,
		severity:    docmodel.SeverityInfo,
		description: "Key terms are defined",
	}}
}

func (r definitionsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	text := doc.FullText()
	classic := 0
	for _, re := range definitionCueRes {
		if re.MatchString(text) {
			classic++
		}
	}

	longForms := make(map[string]string)
	var order []string
	for _, m := range abbrevIntroRe.FindAllStringSubmatch(text, -1) {
		long, abbr := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if len(strings.Fields(long)) < 2 {
			continue
		}
		if _, ok := longForms[abbr]; !ok {
			longForms[abbr] = long
			order = append(order, abbr)
		}
	}

	if classic == 0 && len(order) < 5 {
		return r.one(docmodel.SeverityWarn,
			"No clear definitions found",
			"Neither definition phrases nor introduced abbreviations were found")
	}
	var ev []string
	if classic > 0 {
		ev = append(ev, fmt.Sprintf("Definition patterns: %d", classic))
	}
	if len(order) > 0 {
		pairs := make([]string, 0, 6)
		for _, abbr := range order[:min(6, len(order))] {
			pairs = append(pairs, abbr+"="+longForms[abbr])
		}
		ev = append(ev, "Introduced abbreviations: "+strings.Join(pairs, ", "))
	}
	return r.one(docmodel.SeverityInfo, "Definitions of terms appear to be present", truncate(strings.Join(ev, " | "), 350))
}
