// Package annotate supplies optional AI hints for a document. Providers never
// fail a check: errors are logged by the caller and yield nil annotations.
package annotate

import (
	"context"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

// Provider produces annotations for a document. A nil result with a nil
// error means the provider had nothing usable to say.
type Provider interface {
	Name() string
	Annotate(ctx context.Context, doc *docmodel.Document) (*docmodel.Annotations, error)
}

// Noop never annotates.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) Annotate(context.Context, *docmodel.Document) (*docmodel.Annotations, error) {
	return nil, nil
}

// Completer sends a single prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
