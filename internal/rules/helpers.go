package rules

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/extract"
)

// findLine returns the index of the first paragraph equal to one of
// variants after normalization.
func findLine(paragraphs []string, variants []string) (int, bool) {
	wanted := make(map[string]bool, len(variants))
	for _, v := range variants {
		wanted[extract.NormalizeSimple(v)] = true
	}
	for i, p := range paragraphs {
		if wanted[extract.NormalizeSimple(p)] {
			return i, true
		}
	}
	return 0, false
}

// sectionsInOrder returns the document's sections sorted by position.
func sectionsInOrder(doc *docmodel.Document) []*docmodel.Section {
	out := make([]*docmodel.Section, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *docmodel.Section) int { return a.StartPara - b.StartPara })
	return out
}

// sectionByAliases returns the first section whose normalized title equals
// or contains an alias.
func sectionByAliases(doc *docmodel.Document, aliases []string) *docmodel.Section {
	for _, sec := range sectionsInOrder(doc) {
		t := extract.NormalizeTitle(sec.Title)
		for _, a := range aliases {
			if a = extract.NormalizeTitle(a); a != "" && strings.Contains(t, a) {
				return sec
			}
		}
	}
	return nil
}

func sectionKeysOrNone(doc *docmodel.Document) string {
	keys := doc.SectionKeys()
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// sample joins the first n items, appending "..." when more exist.
func sample(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + "..."
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func containsAny(text string, needles []string) []string {
	var hits []string
	for _, n := range needles {
		if strings.Contains(text, n) {
			hits = append(hits, n)
		}
	}
	return hits
}
