package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

var (
	bracketBlockRe = regexp.MustCompile(`\[([^\]]*?\d[^\]]*?)\]`)
	authorYearRe   = regexp.MustCompile(`\(([A-ZÄÖÜ][A-Za-zÄÖÜäöüß\-]+),\s*(\d{4})\)`)
	nonRangeCharRe = regexp.MustCompile(`[^0-9,\-\s]`)
	digitsRe       = regexp.MustCompile(`\d+`)
	refItemLineRe  = regexp.MustCompile(`^\s*(\[\s*\d+\s*\]|\d+\s*[\.\)])\s+`)
	refBracketRe   = regexp.MustCompile(`^\[\s*(\d+)\s*\]`)
	refNumberedRe  = regexp.MustCompile(`^\s*(\d+)\s*[\.\)]\s+`)
	refYearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	refSurnameRe   = regexp.MustCompile(`^([A-ZÄÖÜ][A-Za-zÄÖÜäöüß\-]+)`)
	anyYearRe      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	dashReplacer   = strings.NewReplacer("–", "-", "—", "-")
)

const (
	maxRangeSpan    = 200
	minRefItems     = 3
	staleNewestYear = 2016

	litSection  = "section"
	litFallback = "fallback"
)

// expandCitationBlock turns "1, 3-5" into 1 3 4 5, keeping first-seen order.
func expandCitationBlock(block string) []string {
	block = dashReplacer.Replace(block)
	block = nonRangeCharRe.ReplaceAllString(block, " ")
	var out []string
	for _, p := range strings.Split(block, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		a, b, isRange := strings.Cut(p, "-")
		if !isRange {
			out = append(out, digitsRe.FindAllString(p, -1)...)
			continue
		}
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		start, errA := strconv.Atoi(a)
		end, errB := strconv.Atoi(b)
		if errA != nil || errB != nil || !allDigits(a) || !allDigits(b) {
			out = append(out, digitsRe.FindAllString(p, -1)...)
			continue
		}
		if start <= end && end-start <= maxRangeSpan {
			for i := start; i <= end; i++ {
				out = append(out, strconv.Itoa(i))
			}
		} else {
			out = append(out, a, b)
		}
	}
	return uniqueStable(out)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func uniqueStable(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

// inTextCitations returns numeric ids and "Name-Year" keys cited in text.
func inTextCitations(text string) (numeric, authorYear []string) {
	for _, m := range bracketBlockRe.FindAllStringSubmatch(text, -1) {
		numeric = append(numeric, expandCitationBlock(m[1])...)
	}
	for _, m := range authorYearRe.FindAllStringSubmatch(text, -1) {
		authorYear = append(authorYear, m[1]+"-"+m[2])
	}
	return numeric, authorYear
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// referenceItems returns the lines that look like numbered reference entries.
func referenceItems(text string) []string {
	var hits []string
	for _, ln := range nonEmptyLines(text) {
		if refItemLineRe.MatchString(ln) {
			hits = append(hits, ln)
		}
	}
	return hits
}

// literatureText returns the reference list text and where it came from.
// Without a literature section the full text serves when it contains a
// numbered reference block.
func literatureText(doc *docmodel.Document) (string, string) {
	if sec := doc.Section(docmodel.Literatur); sec != nil && strings.TrimSpace(sec.Text) != "" {
		return sec.Text, litSection
	}
	full := doc.FullText()
	if len(referenceItems(full)) >= minRefItems {
		return full, litFallback
	}
	return "", ""
}

// referenceEntries extracts numeric ids and "Name-Year" keys from a
// reference list.
func referenceEntries(text string) (numeric, authorYear []string) {
	for _, ln := range nonEmptyLines(text) {
		if m := refBracketRe.FindStringSubmatch(ln); m != nil {
			numeric = append(numeric, m[1])
		} else if m := refNumberedRe.FindStringSubmatch(ln); m != nil {
			numeric = append(numeric, m[1])
		}
		if year := refYearRe.FindString(ln); year != "" {
			if m := refSurnameRe.FindStringSubmatch(ln); m != nil {
				authorYear = append(authorYear, m[1]+"-"+year)
			}
		}
	}
	return uniqueStable(numeric), uniqueStable(authorYear)
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

// difference returns the sorted members of a missing from b.
func difference(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

func listPiece(label string, items []string, n int) string {
	return label + ": " + sample(items, n)
}

type literatureExistsRule struct{ meta }

// LiteratureExists requires a reference list.
func LiteratureExists() Rule {
	return literatureExistsRule{meta{
		id:          "LIT-032",
		category:    CategoryLiterature,
		severity:    docmodel.SeverityError,
		description: "A reference list exists",
	}}
}

func (r literatureExistsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if sec := doc.Section(docmodel.Literatur); sec != nil && strings.TrimSpace(sec.Text) != "" {
		return r.one(docmodel.SeverityInfo, "Reference list found",
			fmt.Sprintf("Title: %s | Words: %d", sec.Title, sec.WordCount))
	}
	if items := referenceItems(doc.FullText()); len(items) >= minRefItems {
		examples := strings.Join(items[:min(3, len(items))], " | ")
		return r.one(docmodel.SeverityWarn,
			"Reference entries found but not segmented under a chapter heading",
			fmt.Sprintf("Entries: %d | Examples: %s", len(items), truncate(examples, 260)))
	}
	return r.one(docmodel.SeverityError,
		"No reference list found",
		"Use a heading such as 'Literatur' or 'Literaturverzeichnis'")
}

type citationsListedRule struct{ meta }

// CitationsInReferenceList checks that every in-text citation has an entry.
func CitationsInReferenceList() Rule {
	return citationsListedRule{meta{
		id:          "LIT-033",
		category:    CategoryLiterature,
		severity:    docmodel.SeverityError,
		description: "Every in-text citation appears in the reference list",
	}}
}

func (r citationsListedRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	lit, source := literatureText(doc)
	if lit == "" {
		return r.one(docmodel.SeverityError, "Reference list missing; citations cannot be matched", "")
	}
	citedNum, citedAY := inTextCitations(doc.FullText())
	refNum, refAY := referenceEntries(lit)
	cn, ca := toSet(citedNum), toSet(citedAY)
	if len(cn) == 0 && len(ca) == 0 {
		return r.one(docmodel.SeverityInfo, "No recognizable citations in the text", "e.g. [1] or (Müller, 2020)")
	}

	missingNum := difference(cn, toSet(refNum))
	missingAY := difference(ca, toSet(refAY))
	if len(missingNum) > 0 || len(missingAY) > 0 {
		var pieces []string
		if len(missingNum) > 0 {
			pieces = append(pieces, listPiece("Missing [n]", missingNum, 25))
		}
		if len(missingAY) > 0 {
			pieces = append(pieces, listPiece("Missing (author-year)", missingAY, 25))
		}
		sev, msg := docmodel.SeverityError, "Some citations were not found in the reference list"
		if source == litFallback {
			sev, msg = docmodel.SeverityWarn, "Possible gaps between citations and references (reference list not segmented as a chapter)"
		}
		return r.one(sev, msg, truncate(strings.Join(pieces, " | "), 350))
	}
	return r.one(docmodel.SeverityInfo,
		"Recognized citations appear in the reference list",
		fmt.Sprintf("Source: %s | Citations: [n]=%d | (author, year)=%d", source, len(cn), len(ca)))
}

type uncitedRule struct{ meta }

// NoUncitedReferences flags reference entries never cited in the text.
func NoUncitedReferences() Rule {
	return uncitedRule{meta{
		id:          "LIT-034",
		category:    CategoryLiterature,
		severity:    docmodel.SeverityWarn,
		description: "The reference list contains no uncited entries",
	}}
}

func (r uncitedRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	lit, source := literatureText(doc)
	if lit == "" {
		return r.one(docmodel.SeverityWarn, "Reference list missing; uncited entries cannot be checked", "")
	}
	citedNum, citedAY := inTextCitations(doc.FullText())
	refNum, refAY := referenceEntries(lit)
	rn, ra := toSet(refNum), toSet(refAY)
	if len(rn) == 0 && len(ra) == 0 {
		return r.one(docmodel.SeverityInfo,
			"No structured reference entries recognized",
			"Author-year styles without numbering are only partially recognized")
	}

	uncitedNum := difference(rn, toSet(citedNum))
	uncitedAY := difference(ra, toSet(citedAY))
	if len(uncitedNum) > 0 || len(uncitedAY) > 0 {
		var pieces []string
		if len(uncitedNum) > 0 {
			pieces = append(pieces, listPiece("Uncited [n]", uncitedNum, 10))
		}
		if len(uncitedAY) > 0 {
			pieces = append(pieces, listPiece("Uncited (author-year)", uncitedAY, 10))
		}
		sev, msg := docmodel.SeverityWarn, "Reference list may contain uncited entries"
		if source == litFallback {
			sev, msg = docmodel.SeverityInfo, "Possibly uncited entries (reference list not segmented as a chapter)"
		}
		return r.one(sev, msg, truncate(strings.Join(pieces, " | "), 350))
	}
	return r.one(docmodel.SeverityInfo,
		"No obviously uncited entries",
		fmt.Sprintf("Source: %s | References: [n]=%d | (author, year)=%d", source, len(rn), len(ra)))
}

type citationStyleRule struct{ meta }

// CitationStyleConsistent flags a mix of numeric and author-year citations.
func CitationStyleConsistent() Rule {
	return citationStyleRule{meta{
		id:          "LIT-035",
		category:    CategoryLiterature,
		severity:    docmodel.SeverityWarn,
		description: "A single citation style is used",
	}}
}

func (r citationStyleRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	citedNum, citedAY := inTextCitations(doc.FullText())
	n, a := len(toSet(citedNum)), len(toSet(citedAY))
	switch {
	case n == 0 && a == 0:
		return r.one(docmodel.SeverityInfo, "No recognizable citation patterns", "")
	case n > 0 && a > 0:
		return r.one(docmodel.SeverityWarn,
			"Mix of numeric and author-year citations; citation style may be inconsistent",
			fmt.Sprintf("[n] citations: %d | (author, year): %d", n, a))
	case n > 0:
		return r.one(docmodel.SeverityInfo, "Citation style looks consistent: numeric ([n])", "")
	}
	return r.one(docmodel.SeverityInfo, "Citation style looks consistent: author-year", "")
}

type densityRule struct{ meta }

// CitationDensity compares citation blocks to document length.
func CitationDensity() Rule {
	return densityRule{meta{
		id:          "LIT-036",
		category:    CategoryLiterature,
		severity:    docmodel.SeverityWarn,
		description: "Citation density is plausible",
	}}
}

func (r densityRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	words := max(1, doc.WordCountTotal)
	cites := doc.Citations.NumericCount + doc.Citations.AuthorYearCount
	switch {
	case words < 1500:
		return r.one(docmodel.SeverityInfo,
			"Document is short; citation density is not assessed strictly",
			fmt.Sprintf("Words: %d | Citation blocks: %d", words, cites))
	case cites == 0:
		return r.one(docmodel.SeverityWarn, "No recognizable citations in the text", fmt.Sprintf("Words: %d", words))
	}
	evidence := fmt.Sprintf("Words: %d | Citation blocks: %d | approx. 1 per %d words", words, cites, words/cites)
	if float64(cites)/float64(words) < 1.0/600 {
		return r.one(docmodel.SeverityWarn, "Citation density looks low", evidence)
	}
	return r.one(docmodel.SeverityInfo, "Citation density looks plausible", evidence)
}

type yearsRule struct{ meta }

// ReferenceYears summarizes publication years in the reference list.
func ReferenceYears() Rule {
	return yearsRule{meta{
		id:          "LIT-037",
		category:    CategoryLiterature,
		severity:    docmodel.SeverityInfo,
		description: "Publication years of the sources",
	}}
}

func (r yearsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	text := doc.FullText()
	if sec := doc.Section(docmodel.Literatur); sec != nil && strings.TrimSpace(sec.Text) != "" {
		text = sec.Text
	}
	seen := make(map[int]bool)
	for _, y := range anyYearRe.FindAllString(text, -1) {
		n, _ := strconv.Atoi(y)
		seen[n] = true
	}
	if len(seen) == 0 {
		return r.one(docmodel.SeverityInfo,
			"No publication years recognized in the references",
			"Some styles omit years or format them differently")
	}
	oldest, newest := 9999, 0
	for y := range seen {
		oldest = min(oldest, y)
		newest = max(newest, y)
	}
	evidence := fmt.Sprintf("Years: %d–%d | distinct: %d", oldest, newest, len(seen))
	if newest <= staleNewestYear {
		return r.one(docmodel.SeverityWarn, "Sources look rather old", evidence)
	}
	return r.one(docmodel.SeverityInfo, "Publication years recognized", evidence)
}
