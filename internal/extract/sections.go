package extract

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"golang.org/x/text/unicode/norm"
)

type keywordSet struct {
	key      docmodel.SectionKey
	keywords []string
}

// sectionKeywords is ordered so resolution is deterministic.
var sectionKeywords = []keywordSet{
	{docmodel.Abstract, []string{"abstract", "kurzfassung", "executive summary"}},
	{docmodel.Abkuerzungen, []string{
		"abkürzungsverzeichnis", "abkuerzungsverzeichnis", "abkürzungen",
		"abkuerzungen", "list of abbreviations", "abbreviations",
	}},
	{docmodel.Einleitung, []string{"einleitung", "introduction"}},
	{docmodel.Theorie, []string{
		"theorie", "grundlagen", "theoretische grundlagen", "theoretischer hintergrund",
		"stand der forschung", "forschungsstand", "background", "theoretical background",
	}},
	{docmodel.Methode, []string{"methode", "methodik", "methods", "methodology"}},
	{docmodel.Ergebnisse, []string{"ergebnisse", "results"}},
	{docmodel.Diskussion, []string{"diskussion", "discussion"}},
	{docmodel.Fazit, []string{
		"fazit", "schluss", "schlussfolgerung", "schlussfolgerungen", "zusammenfassung",
		"conclusion", "conclusions", "summary", "ausblick",
	}},
	{docmodel.Literatur, []string{
		"literaturverzeichnis", "references", "bibliography", "quellenverzeichnis", "quellen",
	}},
}

// Keys whose names collide with ordinary prose only ever match exactly.
var strictOnlyKeys = map[docmodel.SectionKey]bool{
	docmodel.Literatur:    true,
	docmodel.Ergebnisse:   true,
	docmodel.Diskussion:   true,
	docmodel.Abstract:     true,
	docmodel.Abkuerzungen: true,
}

var prefixKeys = map[docmodel.SectionKey]bool{
	docmodel.Einleitung: true,
	docmodel.Theorie:    true,
	docmodel.Methode:    true,
	docmodel.Fazit:      true,
}

var (
	leadingNumberRe  = regexp.MustCompile(`^\s*\d+(?:\.\d+)*\s*[.)]?\s*`)
	trailingPunctRe  = regexp.MustCompile(`[\s:;.\-–—]+$`)
	literatureSearch = regexp.MustCompile(`\bliteraturrecherche\b`)
	theoryLikeRe     = regexp.MustCompile(`\b(theorie|grundlagen|theoretisch|forschungsstand|stand der forschung|background)\b`)
	wordRe           = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// KeywordsFor returns the chapter names that resolve to key.
func KeywordsFor(key docmodel.SectionKey) []string {
	for _, ks := range sectionKeywords {
		if ks.key == key {
			return slices.Clone(ks.keywords)
		}
	}
	return nil
}

// NormalizeTitle lowercases a heading and strips its outline number and
// trailing punctuation.
func NormalizeTitle(title string) string {
	t := norm.NFKC.String(title)
	t = strings.ReplaceAll(t, "\u00a0", " ")
	t = strings.ToLower(strings.TrimSpace(t))
	t = leadingNumberRe.ReplaceAllString(t, "")
	t = strings.TrimSpace(trailingPunctRe.ReplaceAllString(t, ""))
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(t, " "))
}

func isAllDigits(s string) bool {
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

// ResolveSectionKey maps a heading to a section key. level 0 means the
// level is unknown and number "" means the heading is unnumbered.
func ResolveSectionKey(title string, level int, number string) (docmodel.SectionKey, bool) {
	t := NormalizeTitle(title)
	if t == "" || literatureSearch.MatchString(t) {
		return "", false
	}
	topLevel := level == 1 || isAllDigits(number)

	if key, ok := exactMatch(t, true); ok {
		return key, true
	}
	if key, ok := exactMatch(t, false); ok {
		return key, true
	}
	if !topLevel {
		return "", false
	}
	if key, ok := prefixMatch(t); ok {
		return key, true
	}
	if theoryLikeRe.MatchString(t) {
		return docmodel.Theorie, true
	}
	return "", false
}

func exactMatch(t string, strict bool) (docmodel.SectionKey, bool) {
	for _, ks := range sectionKeywords {
		if strictOnlyKeys[ks.key] != strict {
			continue
		}
		for _, kw := range ks.keywords {
			if t == NormalizeTitle(kw) {
				return ks.key, true
			}
		}
	}
	return "", false
}

// prefixMatch handles titles such as "Einleitung und Motivation".
func prefixMatch(t string) (docmodel.SectionKey, bool) {
	for _, ks := range sectionKeywords {
		if !prefixKeys[ks.key] {
			continue
		}
		for _, kw := range ks.keywords {
			if kwn := NormalizeTitle(kw); kwn != "" && strings.HasPrefix(t, kwn+" ") {
				return ks.key, true
			}
		}
	}
	return "", false
}

// WordCount counts Unicode word tokens.
func WordCount(text string) int {
	return len(wordRe.FindAllStringIndex(text, -1))
}

// BuildSections slices paragraphs into at most one section per key. The
// first heading resolving to a key wins; a body runs up to the next
// key-resolving heading. BuildSections does not modify its inputs.
func BuildSections(paragraphs []string, headings []docmodel.Heading) map[docmodel.SectionKey]*docmodel.Section {
	hs := slices.Clone(headings)
	slices.SortStableFunc(hs, func(a, b docmodel.Heading) int { return a.ParaIndex - b.ParaIndex })

	keys := make([]docmodel.SectionKey, len(hs))
	for i, h := range hs {
		keys[i], _ = ResolveSectionKey(h.Text, h.Level, h.Number)
	}

	sections := make(map[docmodel.SectionKey]*docmodel.Section)
	for i, h := range hs {
		key := keys[i]
		if key == "" {
			continue
		}
		if _, claimed := sections[key]; claimed {
			continue
		}

		start := min(h.ParaIndex+1, len(paragraphs))
		end := len(paragraphs)
		for j := i + 1; j < len(hs); j++ {
			if keys[j] != "" {
				end = hs[j].ParaIndex
				break
			}
		}
		end = max(start, min(end, len(paragraphs)))

		var body []string
		for _, p := range paragraphs[start:end] {
			if strings.TrimSpace(p) != "" {
				body = append(body, p)
			}
		}
		text := strings.TrimSpace(strings.Join(body, "\n"))

		sections[key] = &docmodel.Section{
			Key:       key,
			Title:     h.Text,
			StartPara: start,
			EndPara:   max(start, end-1),
			Text:      text,
			WordCount: WordCount(text),
		}
	}
	return sections
}
