package extract

import (
	"regexp"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

// TOCTitle is the paragraph text that opens a table of contents.
const TOCTitle = "inhaltsverzeichnis"

var tocLineRes = []*regexp.Regexp{
	regexp.MustCompile(`\.{3,}`),
	// "1.Einleitung1": number, title and page glued together
	regexp.MustCompile(`^\d+(\.\d+)*[a-zäöüß].*\d{1,4}$`),
	regexp.MustCompile(`^\d+(\.\d+)*\s+.+\s+\d{1,4}$`),
	regexp.MustCompile(`^[a-zäöüß].+\s+\d{1,4}$`),
}

// LooksLikeTOCLine reports whether p has the shape of a TOC entry.
func LooksLikeTOCLine(p string) bool {
	t := NormalizeSimple(p)
	if t == "" {
		return false
	}
	for _, re := range tocLineRes {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

// FindTOCRange locates the table of contents as the half-open paragraph
// range [start, end). The range ends at the first window of opts.TOCWindow
// paragraphs holding at least opts.TOCThreshold lines that do not look like
// TOC entries.
func FindTOCRange(paragraphs []string, opts Options) (start, end int, ok bool) {
	start = -1
	for i, p := range paragraphs {
		if NormalizeSimple(p) == TOCTitle {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	maxScan := min(len(paragraphs), start+opts.TOCScanCap)
	for j := start + 1; j < maxScan; j++ {
		nonEmpty, nonTOC := 0, 0
		for _, p := range paragraphs[j:min(maxScan, j+opts.TOCWindow)] {
			if NormalizeSimple(p) == "" {
				continue
			}
			nonEmpty++
			if !LooksLikeTOCLine(p) {
				nonTOC++
			}
		}
		if nonEmpty == 0 {
			continue
		}
		if nonTOC >= opts.TOCThreshold {
			return start, j, true
		}
	}
	return start, min(len(paragraphs), start+opts.TOCFallbackSpan), true
}

// ExcludeTOCHeadings drops headings inside the TOC range whose source
// paragraph is itself a TOC entry.
func ExcludeTOCHeadings(paragraphs []string, headings []docmodel.Heading, opts Options) []docmodel.Heading {
	start, end, ok := FindTOCRange(paragraphs, opts)
	if !ok {
		return headings
	}
	out := make([]docmodel.Heading, 0, len(headings))
	for _, h := range headings {
		if h.ParaIndex >= start && h.ParaIndex < end && LooksLikeTOCLine(paragraphs[h.ParaIndex]) {
			continue
		}
		out = append(out, h)
	}
	return out
}
