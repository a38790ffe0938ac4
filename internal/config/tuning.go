package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/thesischeck/internal/extract"
)

// Tuning holds heuristic parameters that can be adjusted without a rebuild.
// Zero values keep the built-in defaults.
//
//	extract:
//	  toc_window: 8
//	  toc_threshold: 5
//	engine:
//	  workers: 8
//	annotate:
//	  prompt_tokens: 3000
type Tuning struct {
	Extract  extract.Options `yaml:"extract"`
	Engine   EngineTuning    `yaml:"engine"`
	Annotate AnnotateTuning  `yaml:"annotate"`
}

type EngineTuning struct {
	Workers int `yaml:"workers"`
}

type AnnotateTuning struct {
	PromptTokens int `yaml:"prompt_tokens"`
}

// ParseTuning decodes YAML tuning data. Unknown keys are rejected.
func ParseTuning(data []byte) (Tuning, error) {
	var t Tuning
	if len(bytes.TrimSpace(data)) == 0 {
		return t, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	if t.Engine.Workers < 0 || t.Annotate.PromptTokens < 0 {
		return Tuning{}, fmt.Errorf("parse tuning: negative values are not allowed")
	}
	return t, nil
}

// LoadTuning reads a tuning file. An empty path yields the defaults.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return Tuning{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	return ParseTuning(data)
}
