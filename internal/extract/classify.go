package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/wordml"
	"golang.org/x/text/unicode/norm"
)

const maxOutlineDepth = 9

var (
	styleHeadingRe = regexp.MustCompile(`(heading|überschrift|berschrift)\s*([1-9])?`)
	numberingRe    = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\.?\s+(.+)$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// NormalizeSpace applies NFKC, turns non-breaking spaces into spaces,
// collapses whitespace runs and trims.
func NormalizeSpace(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeSimple is NormalizeSpace lowercased.
func NormalizeSimple(s string) string {
	return strings.ToLower(NormalizeSpace(s))
}

// ParagraphText is the visible text of a paragraph.
func ParagraphText(p *wordml.Node) string {
	return NormalizeSpace(wordml.TextContent(p))
}

// StyleHeadingLevel parses a paragraph style id. It returns 0 when the style
// is not a heading style and 1 for heading styles without a digit.
func StyleHeadingLevel(styleID string) int {
	m := styleHeadingRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(styleID)))
	if m == nil {
		return 0
	}
	if m[2] == "" {
		return 1
	}
	return int(m[2][0] - '0')
}

// ExplicitNumber splits "2.1 Title" into its outline number and title.
func ExplicitNumber(text string) (number, title string, ok bool) {
	m := numberingRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// NumberDepth is the outline depth of a dotted number, 0 for "".
func NumberDepth(number string) int {
	if number == "" {
		return 0
	}
	return strings.Count(number, ".") + 1
}

// OutlineCounter synthesizes outline numbers for headings numbered by the
// word processor's list engine. One counter belongs to one document.
type OutlineCounter struct {
	counts [maxOutlineDepth + 1]int
}

// Next advances the counter for a 0-based list level and returns the
// dotted number from depth 1 through that level.
func (c *OutlineCounter) Next(ilvl int) string {
	depth := min(max(ilvl+1, 1), maxOutlineDepth)
	c.counts[depth]++
	for k := depth + 1; k <= maxOutlineDepth; k++ {
		c.counts[k] = 0
	}
	if depth > 1 && c.counts[1] == 0 {
		c.counts[1] = 1
	}
	parts := make([]string, depth)
	for k := 1; k <= depth; k++ {
		parts[k-1] = strconv.Itoa(c.counts[k])
	}
	return strings.Join(parts, ".")
}

func styleID(p *wordml.Node) string {
	return p.Find("pPr", "pStyle").Attr("val")
}

// listLevel reads pPr/numPr/ilvl. Unparseable values count as absent.
func listLevel(p *wordml.Node) (int, bool) {
	n := p.Find("pPr", "numPr", "ilvl")
	if n == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Attr("val")))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Heading tiers, tried in order.

func headingByStyle(styleLevel int) bool {
	return styleLevel > 0
}

func headingByNumber(number, text string, opts Options) bool {
	return number != "" && utf8.RuneCountInString(text) <= opts.NumberedHeadingMaxLen
}

func headingByKeyword(title string, level int, number string, opts Options) bool {
	if utf8.RuneCountInString(title) > opts.KeywordHeadingMaxLen {
		return false
	}
	_, ok := ResolveSectionKey(title, level, number)
	return ok
}

func headingLevel(number string, styleLevel int) int {
	switch {
	case number != "":
		return NumberDepth(number)
	case styleLevel > 0:
		return styleLevel
	default:
		return 1
	}
}

type classifier struct {
	opts    Options
	outline OutlineCounter
}

// classify decides whether a non-table paragraph is a heading.
func (c *classifier) classify(p *wordml.Node, text string, idx int) (docmodel.Heading, bool) {
	styleLevel := StyleHeadingLevel(styleID(p))

	number, title, explicit := ExplicitNumber(text)
	if !explicit {
		title = text
		if headingByStyle(styleLevel) {
			if ilvl, ok := listLevel(p); ok {
				number = c.outline.Next(ilvl)
			}
		}
	}

	probe := styleLevel
	if probe == 0 {
		probe = NumberDepth(number)
	}

	if !headingByStyle(styleLevel) &&
		!headingByNumber(number, text, c.opts) &&
		!headingByKeyword(title, probe, number, c.opts) {
		return docmodel.Heading{}, false
	}
	return docmodel.Heading{
		Text:      title,
		Level:     headingLevel(number, styleLevel),
		Number:    number,
		ParaIndex: idx,
	}, true
}

// paragraphsAndHeadings flattens the body into paragraph texts and
// classified headings. Table paragraphs contribute text only.
func paragraphsAndHeadings(body *wordml.Node, opts Options) ([]string, []docmodel.Heading) {
	c := &classifier{opts: opts}
	var paragraphs []string
	var headings []docmodel.Heading
	for p, inTable := range Walk(body) {
		idx := len(paragraphs)
		text := ParagraphText(p)
		paragraphs = append(paragraphs, text)
		if text == "" || inTable {
			continue
		}
		if h, ok := c.classify(p, text, idx); ok {
			headings = append(headings, h)
		}
	}
	return paragraphs, headings
}
