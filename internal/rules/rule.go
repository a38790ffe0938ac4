// Package rules holds the heuristic checks run against a document model.
//
// Every rule is pure with respect to the model: it reads the document and the
// optional annotations, never mutates them, and never sees another rule's
// findings. Each rule returns at least one finding for every input; "cannot
// tell" is reported as an info or warn finding.
package rules

import (
	"github.com/dgallion1/thesischeck/internal/docmodel"
)

// Categories used by the built-in rules.
const (
	CategoryStructure   = "structure"
	CategoryFormal      = "formal"
	CategoryQuestion    = "research-question"
	CategoryMethod      = "method"
	CategoryResults     = "results"
	CategoryLiterature  = "literature"
	CategoryTerminology = "terminology"
)

// Rule is one heuristic check.
type Rule interface {
	ID() string
	Category() string
	Severity() docmodel.Severity
	// NeedsAI reports whether the rule benefits from annotations. It is
	// informational; rules always fall back to their own text scan.
	NeedsAI() bool
	Evaluate(doc *docmodel.Document, ai *docmodel.Annotations) []docmodel.Finding
}

// meta carries the descriptor every rule embeds.
type meta struct {
	id          string
	category    string
	severity    docmodel.Severity
	needsAI     bool
	description string
}

func (m meta) ID() string                  { return m.id }
func (m meta) Category() string            { return m.category }
func (m meta) Severity() docmodel.Severity { return m.severity }
func (m meta) NeedsAI() bool               { return m.needsAI }
func (m meta) Description() string         { return m.description }

func (m meta) finding(sev docmodel.Severity, msg, evidence string) docmodel.Finding {
	return docmodel.Finding{
		RuleID:   m.id,
		Category: m.category,
		Severity: sev,
		Message:  msg,
		Evidence: evidence,
	}
}

func (m meta) one(sev docmodel.Severity, msg, evidence string) []docmodel.Finding {
	return []docmodel.Finding{m.finding(sev, msg, evidence)}
}

// Descriptor is the JSON view of a rule.
type Descriptor struct {
	ID          string            `json:"id"`
	Category    string            `json:"category"`
	Severity    docmodel.Severity `json:"severity"`
	NeedsAI     bool              `json:"needs_ai"`
	Description string            `json:"description,omitempty"`
}

// Describe lists descriptors in registry order.
func Describe(rs []Rule) []Descriptor {
	out := make([]Descriptor, len(rs))
	for i, r := range rs {
		d := Descriptor{
			ID:       r.ID(),
			Category: r.Category(),
			Severity: r.Severity(),
			NeedsAI:  r.NeedsAI(),
		}
		if dr, ok := r.(interface{ Description() string }); ok {
			d.Description = dr.Description()
		}
		out[i] = d
	}
	return out
}
