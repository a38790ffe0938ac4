package docmodel

import (
	"sort"
	"strings"
)

// SectionKey names a semantic chapter role.
type SectionKey string

const (
	Einleitung   SectionKey = "einleitung"
	Theorie      SectionKey = "theorie"
	Methode      SectionKey = "methode"
	Ergebnisse   SectionKey = "ergebnisse"
	Diskussion   SectionKey = "diskussion"
	Fazit        SectionKey = "fazit"
	Literatur    SectionKey = "literatur"
	Abstract     SectionKey = "abstract"
	Abkuerzungen SectionKey = "abkuerzungen"
)

// Heading is a classified structural heading.
type Heading struct {
	Text      string `json:"text"`             // title with leading number stripped
	Level     int    `json:"level"`            // 1-based outline depth
	Number    string `json:"number,omitempty"` // dot-separated outline number, "" if none
	ParaIndex int    `json:"para_index"`
}

// Section is the body of a chapter resolved to a SectionKey.
type Section struct {
	Key       SectionKey `json:"key"`
	Title     string     `json:"title"`
	StartPara int        `json:"start_para"`
	EndPara   int        `json:"end_para"` // last body paragraph, inclusive
	Text      string     `json:"-"`
	WordCount int        `json:"word_count"`
}

// CitationSignals are counts only; individual citations are not retained.
type CitationSignals struct {
	NumericCount    int `json:"numeric_count"`
	AuthorYearCount int `json:"author_year_count"`
	EtAlCount       int `json:"etal_count"`
}

// Document is the logical model of one thesis. It is built once and is
// read-only afterwards.
type Document struct {
	Filename       string                  `json:"filename"`
	Paragraphs     []string                `json:"-"`
	Headings       []Heading               `json:"headings"`
	Sections       map[SectionKey]*Section `json:"sections"`
	WordCountTotal int                     `json:"word_count_total"`
	TablesCount    int                     `json:"tables_count"`
	FigureRefs     []string                `json:"figure_refs"`
	TableRefs      []string                `json:"table_refs"`
	Citations      CitationSignals         `json:"citations"`
}

// Section returns the section for key or nil.
func (d *Document) Section(key SectionKey) *Section {
	if d.Sections == nil {
		return nil
	}
	return d.Sections[key]
}

// HasSection reports whether key was segmented.
func (d *Document) HasSection(key SectionKey) bool {
	return d.Section(key) != nil
}

// SectionKeys returns the segmented keys in sorted order.
func (d *Document) SectionKeys() []string {
	keys := make([]string, 0, len(d.Sections))
	for k := range d.Sections {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// NonEmptyParagraphs returns the paragraphs that carry text.
func (d *Document) NonEmptyParagraphs() []string {
	out := make([]string, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// FullText joins the non-empty paragraphs with newlines.
func (d *Document) FullText() string {
	return strings.Join(d.NonEmptyParagraphs(), "\n")
}

// Annotations are optional hints supplied by an external AI provider.
// A nil *Annotations means none are available.
type Annotations struct {
	ResearchQuestion string `json:"research_question,omitempty"`
}

// ResearchQuestionOrEmpty is safe on a nil receiver.
func (a *Annotations) ResearchQuestionOrEmpty() string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a.ResearchQuestion)
}
