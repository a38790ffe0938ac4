package annotate

import (
	"fmt"
	"strings"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

const SystemPrompt = `You read excerpts of academic theses. Reply with the central research question of the thesis, quoted or paraphrased in the thesis language, as one sentence. Reply with ONLY the question. If the excerpt states no research question, reply with NONE.`

// DefaultPromptTokens bounds the excerpt sent to the model.
const DefaultPromptTokens = 3000

// headParagraphs is the fallback excerpt length when no introduction was found.
const headParagraphs = 60

// excerpt picks the introduction text, or the head of the document.
func excerpt(doc *docmodel.Document) (source, text string) {
	if sec := doc.Section(docmodel.Einleitung); sec != nil && strings.TrimSpace(sec.Text) != "" {
		return sec.Title, sec.Text
	}
	paras := doc.NonEmptyParagraphs()
	if len(paras) > headParagraphs {
		paras = paras[:headParagraphs]
	}
	return "document start", strings.Join(paras, "\n")
}

// BuildPrompt creates the user prompt for doc, trimmed to budget tokens.
func BuildPrompt(doc *docmodel.Document, budget int) string {
	if budget <= 0 {
		budget = DefaultPromptTokens
	}
	source, text := excerpt(doc)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Document: %q\n", doc.Filename))
	sb.WriteString(fmt.Sprintf("Excerpt: %s\n", source))
	sb.WriteString("---\n")
	sb.WriteString(TrimToTokens(text, budget))
	return sb.String()
}
