package annotate

import (
	"regexp"
	"strings"
)

// MaxAnswerLen bounds an accepted research question, in bytes.
const MaxAnswerLen = 600

var (
	codeBlockRe      = regexp.MustCompile("(?s)^```(?:json|text)?\\s*(.*?)\\s*```$")
	injectionPattern = regexp.MustCompile(
		`(?i)(\bignore\s+(previous|all|above)\b|\bsystem\s*prompt\b|\byou\s+are\s+now\b|` +
			`^\s*(act|pretend)\s+(as|to\s+be)\b|\bpretend\s+(you|to\s+be)\b|` +
			`\bforget\s+(everything|all)\b|\boverride\s+(your|the|all|previous)\s+(instructions|rules|prompt)\b|` +
			`\bnew\s+instructions\b)`,
	)
	answerPrefixRe = regexp.MustCompile(`(?i)^(research\s+question|forschungsfrage)\s*:\s*`)
)

var emptyAnswers = map[string]bool{
	"none":   true,
	"keine":  true,
	"n/a":    true,
	"null":   true,
	"-":      true,
	"nichts": true,
}

// ParseResearchQuestion cleans a model answer. It returns "" when the answer
// is unusable.
func ParseResearchQuestion(raw string) string {
	s := strings.TrimSpace(raw)
	if m := codeBlockRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = answerPrefixRe.ReplaceAllString(s, "")
	s = strings.Trim(s, " \t\r\n\"'`„“”‚‘’«»")
	if s == "" {
		return ""
	}
	if emptyAnswers[strings.ToLower(strings.TrimRight(s, "."))] {
		return ""
	}
	if len(s) > MaxAnswerLen {
		return ""
	}
	if injectionPattern.MatchString(s) {
		return ""
	}
	return s
}
