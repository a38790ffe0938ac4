package rules

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

var (
	outlineNumberRe = regexp.MustCompile(`^\d+(?:\.\d+)*$`)
	leadingNumRe    = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\.?\s+`)
)

// frontMatterTitles may stay unnumbered before chapter 1.
var frontMatterTitles = map[string]bool{
	"kurzfassung":                 true,
	"abstract":                    true,
	"danksagung":                  true,
	"vorwort":                     true,
	"abkürzungsverzeichnis":       true,
	"abkuerzungsverzeichnis":      true,
	"abkürzungen":                 true,
	"abkuerzungen":                true,
	"inhaltsverzeichnis":          true,
	"abbildungsverzeichnis":       true,
	"tabellenverzeichnis":         true,
	"verzeichnis der abbildungen": true,
	"verzeichnis der tabellen":    true,
}

// numberParts returns the digit parts of a dotted number, skipping
// anything non-numeric.
func numberParts(number string) []int {
	var parts []int
	for _, s := range strings.Split(number, ".") {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 0 {
			parts = append(parts, n)
		}
	}
	return parts
}

// strictNumber parses a well-formed outline number or returns nil.
func strictNumber(number string) []int {
	s := strings.TrimSpace(number)
	if !outlineNumberRe.MatchString(s) {
		return nil
	}
	return numberParts(s)
}

// headingNumber prefers the extracted number and falls back to a number
// at the start of the text.
func headingNumber(h docmodel.Heading) string {
	if n := strings.TrimSpace(h.Number); n != "" {
		return strings.TrimRight(n, ".")
	}
	if m := leadingNumRe.FindStringSubmatch(strings.TrimSpace(h.Text)); m != nil {
		return strings.TrimRight(m[1], ".")
	}
	return ""
}

func joinParts(parts []int) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ".")
}

func numberedHeadings(doc *docmodel.Document) []docmodel.Heading {
	var out []docmodel.Heading
	for _, h := range doc.Headings {
		if h.Number != "" {
			out = append(out, h)
		}
	}
	return out
}

type hierarchyRule struct{ meta }

// HeadingHierarchy checks that levels match numbers and siblings do not skip.
func HeadingHierarchy() Rule {
	return hierarchyRule{meta{
		id:          "STRUCT-009",
		category:    CategoryStructure,
		severity:    docmodel.SeverityWarn,
		description: "Heading hierarchy is consistent (1, 1.1, 1.1.1)",
	}}
}

func (r hierarchyRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	numbered := numberedHeadings(doc)
	if len(numbered) == 0 {
		return r.one(docmodel.SeverityInfo, "No numbered headings found; hierarchy check skipped", "")
	}

	var findings []docmodel.Finding
	var prev []int
	for _, h := range numbered {
		parts := numberParts(h.Number)
		if h.Level != len(parts) {
			findings = append(findings, r.finding(docmodel.SeverityWarn,
				fmt.Sprintf("Heading level may not match its number: '%s %s'", h.Number, h.Text),
				fmt.Sprintf("Expected level: %d, detected: %d", len(parts), h.Level)))
		}
		if prev != nil && len(parts) > 0 && len(parts) == len(prev) {
			last := len(parts) - 1
			if slices.Equal(parts[:last], prev[:last]) && parts[last] > prev[last]+1 {
				findings = append(findings, r.finding(docmodel.SeverityWarn,
					fmt.Sprintf("Possible numbering jump: %s followed by %s", joinParts(prev), h.Number),
					fmt.Sprintf("Heading: %s %s", h.Number, h.Text)))
			}
		}
		prev = parts
	}

	if len(findings) == 0 {
		return r.one(docmodel.SeverityInfo, "Heading hierarchy looks consistent",
			fmt.Sprintf("Numbered headings: %d", len(numbered)))
	}
	return findings
}

type depthRule struct{ meta }

// HeadingDepth reports the deepest outline level.
func HeadingDepth() Rule {
	return depthRule{meta{
		id:          "STRUCT-010",
		category:    CategoryStructure,
		severity:    docmodel.SeverityInfo,
		description: "Outline depth is not excessive (at most 4 levels)",
	}}
}

func (r depthRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	numbered := numberedHeadings(doc)
	if len(numbered) == 0 {
		return r.one(docmodel.SeverityInfo, "No numbered headings found; depth check skipped", "")
	}
	maxDepth := 0
	var deepest docmodel.Heading
	for _, h := range numbered {
		if d := len(numberParts(h.Number)); d > maxDepth {
			maxDepth = d
			deepest = h
		}
	}
	if maxDepth > 4 {
		return r.one(docmodel.SeverityInfo,
			fmt.Sprintf("Outline is deep: %d levels (more than 4)", maxDepth),
			fmt.Sprintf("Deepest example: %s %s", deepest.Number, deepest.Text))
	}
	return r.one(docmodel.SeverityInfo, fmt.Sprintf("Maximum outline depth: %d levels", maxDepth), "")
}

type numberedRule struct{ meta }

// HeadingsNumbered requires numbered top-level headings from chapter 1 on.
// Front matter such as the abstract or the lists may stay unnumbered.
func HeadingsNumbered() Rule {
	return numberedRule{meta{
		id:          "FORM-041a",
		category:    CategoryFormal,
		severity:    docmodel.SeverityError,
		description: "Top-level headings are numbered from chapter 1 on",
	}}
}

func (r numberedRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	hs := doc.Headings
	if len(hs) == 0 {
		return r.one(docmodel.SeverityError, "No headings detected; numbering cannot be checked", "")
	}

	first := -1
	for i, h := range hs {
		if h.Level != 1 {
			continue
		}
		if parts := strictNumber(headingNumber(h)); len(parts) > 0 && parts[0] == 1 {
			first = i
			break
		}
	}
	if first < 0 {
		return r.one(docmodel.SeverityError,
			"Chapter 1 (first numbered top-level heading) not detected",
			"Chapter 1 must be formatted as a level 1 heading")
	}

	unnumbered := func(h docmodel.Heading) bool {
		return h.Level == 1 && strictNumber(headingNumber(h)) == nil
	}

	var front []string
	for _, h := range hs[:first] {
		if unnumbered(h) && !frontMatterTitles[strings.ToLower(strings.TrimSpace(h.Text))] {
			front = append(front, strings.TrimSpace(h.Text))
		}
	}
	if len(front) > 0 {
		return r.one(docmodel.SeverityWarn,
			"Unnumbered headings found before chapter 1",
			"Examples: "+strings.Join(front[:min(8, len(front))], ", "))
	}

	var body []string
	for _, h := range hs[first:] {
		if unnumbered(h) {
			body = append(body, strings.TrimSpace(h.Text))
		}
	}
	if len(body) > 0 {
		return r.one(docmodel.SeverityError,
			"Some top-level headings are not numbered",
			"Examples: "+strings.Join(body[:min(8, len(body))], ", "))
	}
	return r.one(docmodel.SeverityInfo, "Top-level headings are numbered", "")
}

type numberingGapsRule struct{ meta }

// HeadingNumberingNoGaps checks that chapters run 1, 2, 3 and that
// subsections run X.1, X.2 within each chapter.
func HeadingNumberingNoGaps() Rule {
	return numberingGapsRule{meta{
		id:          "FORM-041b",
		category:    CategoryFormal,
		severity:    docmodel.SeverityError,
		description: "Heading numbering has no gaps on levels 1 and 2",
	}}
}

type numberedHeading struct {
	num []int
	h   docmodel.Heading
}

func (r numberingGapsRule) Evaluate(doc *docmodel.Document, _ *docmodel.Annotations) []docmodel.Finding {
	if len(doc.Headings) == 0 {
		return r.one(docmodel.SeverityError, "No headings detected; numbering gaps cannot be checked", "")
	}

	var lvl1, lvl2 []numberedHeading
	for _, h := range doc.Headings {
		n := strictNumber(headingNumber(h))
		if len(n) == 0 {
			continue
		}
		switch h.Level {
		case 1:
			lvl1 = append(lvl1, numberedHeading{n, h})
		case 2:
			lvl2 = append(lvl2, numberedHeading{n, h})
		}
	}
	if len(lvl1) == 0 && len(lvl2) == 0 {
		return r.one(docmodel.SeverityError, "No numbered headings found; numbering gaps cannot be checked", "")
	}

	byNumber := func(a, b numberedHeading) int { return slices.Compare(a.num, b.num) }
	var problems []string

	slices.SortStableFunc(lvl1, byNumber)
	expected := 1
	for _, it := range lvl1 {
		if it.num[0] != expected {
			problems = append(problems, fmt.Sprintf("level 1 expected %d, found %d ('%s')",
				expected, it.num[0], truncate(it.h.Text, 40)))
			expected = it.num[0] + 1
		} else {
			expected++
		}
	}

	perChapter := make(map[int][]numberedHeading)
	for _, it := range lvl2 {
		if len(it.num) >= 2 {
			perChapter[it.num[0]] = append(perChapter[it.num[0]], it)
		}
	}
	for _, ch := range slices.Sorted(maps.Keys(perChapter)) {
		items := perChapter[ch]
		slices.SortStableFunc(items, byNumber)
		exp := 1
		for _, it := range items {
			if it.num[1] != exp {
				problems = append(problems, fmt.Sprintf("level 2 in chapter %d expected %d.%d, found %d.%d ('%s')",
					ch, ch, exp, ch, it.num[1], truncate(it.h.Text, 40)))
				exp = it.num[1] + 1
			} else {
				exp++
			}
		}
	}

	if len(problems) > 0 {
		evidence := strings.Join(problems[:min(6, len(problems))], " | ")
		if len(problems) > 6 {
			evidence += " ..."
		}
		return r.one(docmodel.SeverityError, "Heading numbering has gaps", evidence)
	}
	return r.one(docmodel.SeverityInfo, "Heading numbering has no gaps on levels 1 and 2", "")
}
