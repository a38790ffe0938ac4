package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/rules"
)

const sampleThesis = "1 Einleitung\n\nText.\n\n2 Methode\n\nText.\n\n3 Ergebnisse\n\nText.\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arbeit.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleThesis), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := checkCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckText(t *testing.T) {
	out, err := run(t, writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "arbeit.txt")
	assert.Contains(t, out, "STRUCT-007")
	assert.Contains(t, out, "ERROR")
}

func TestCheckJSON(t *testing.T) {
	out, err := run(t, "--format", "json", writeSample(t))
	require.NoError(t, err)

	var report docmodel.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "arbeit.txt", report.Filename)
	assert.GreaterOrEqual(t, len(report.Findings), len(rules.Registry()))
}

func TestCheckFailOn(t *testing.T) {
	_, err := run(t, "--fail-on", "error", writeSample(t))
	assert.ErrorIs(t, err, errFindings)

	_, err = run(t, "--fail-on", "bogus", writeSample(t))
	assert.Error(t, err)
}

func TestCheckRejectsBadFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", writeSample(t))
	assert.Error(t, err)
}

func TestCheckTuningFile(t *testing.T) {
	tuning := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(tuning, []byte("engine:\n  workers: 1\n"), 0o600))

	out, err := run(t, "--tuning", tuning, writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "STRUCT-007")
}

func TestRulesTable(t *testing.T) {
	var out bytes.Buffer
	cmd := rulesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(rules.Registry())+1)
	assert.True(t, strings.HasPrefix(lines[1], "STRUCT-007"))
}
