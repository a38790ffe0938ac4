package docmodel

import "time"

// Severity of a Finding.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Finding is one observation produced by a rule.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Evidence string   `json:"evidence,omitempty"`
}

// Summary counts findings per severity.
type Summary struct {
	Info  int `json:"info"`
	Warn  int `json:"warn"`
	Error int `json:"error"`
}

// Summarize tallies findings by severity.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.Error++
		case SeverityWarn:
			s.Warn++
		default:
			s.Info++
		}
	}
	return s
}

// Stats describes the extracted structure behind a report.
type Stats struct {
	Paragraphs  int      `json:"paragraphs"`
	Headings    int      `json:"headings"`
	Sections    []string `json:"sections"`
	Words       int      `json:"words"`
	Tables      int      `json:"tables"`
	AIAnnotated bool     `json:"ai_annotated"`
}

// Report is the full result of checking one document.
type Report struct {
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	RuleSet     string    `json:"rule_set"`
	Findings    []Finding `json:"findings"`
	Summary     Summary   `json:"summary"`
	Stats       Stats     `json:"stats"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewReport assembles a report for doc.
func NewReport(doc *Document, hash, ruleSet string, findings []Finding, annotated bool) *Report {
	return &Report{
		Filename:    doc.Filename,
		ContentHash: hash,
		RuleSet:     ruleSet,
		Findings:    findings,
		Summary:     Summarize(findings),
		Stats: Stats{
			Paragraphs:  len(doc.Paragraphs),
			Headings:    len(doc.Headings),
			Sections:    doc.SectionKeys(),
			Words:       doc.WordCountTotal,
			Tables:      doc.TablesCount,
			AIAnnotated: annotated,
		},
		CreatedAt: time.Now().UTC(),
	}
}
