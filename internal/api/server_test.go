package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/thesischeck/internal/annotate"
	"github.com/dgallion1/thesischeck/internal/config"
	"github.com/dgallion1/thesischeck/internal/docmodel"
	"github.com/dgallion1/thesischeck/internal/engine"
	"github.com/dgallion1/thesischeck/internal/pathstore"
	"github.com/dgallion1/thesischeck/internal/pipeline"
	"github.com/dgallion1/thesischeck/internal/rules"
)

const apiKey = "test-key"

const thesis = "1 Einleitung\n\nText.\n\n2 Methode\n\nText.\n\n3 Ergebnisse\n\nText.\n"

// kvStore is an in-memory pathstore stand-in.
type kvStore struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
}

func (m *kvStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case r.Method == http.MethodPut:
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.nodes[key] = req.Value
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		nodes := []pathstore.Node{}
		for k, v := range m.nodes {
			if strings.HasPrefix(k, prefix) {
				nodes = append(nodes, pathstore.Node{Key: k, Value: v})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	case r.Method == http.MethodGet:
		v, ok := m.nodes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(pathstore.Node{Key: key, Value: v})
	case r.Method == http.MethodDelete:
		delete(m.nodes, key)
		w.WriteHeader(http.StatusNoContent)
	}
}

type testEnv struct {
	srv   *httptest.Server
	store *kvStore
}

func newTestEnv(t *testing.T, withPathstore bool) *testEnv {
	t.Helper()
	cfg := config.Config{
		APIKey:         apiKey,
		AIProvider:     "none",
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	env := &testEnv{}

	var ps *pathstore.Client
	if withPathstore {
		env.store = &kvStore{nodes: map[string]json.RawMessage{}}
		psSrv := httptest.NewServer(env.store)
		t.Cleanup(psSrv.Close)
		ps = pathstore.NewClient(psSrv.URL, "ps-key")
	}

	log := slog.New(slog.DiscardHandler)
	checker := pipeline.NewChecker(engine.New(rules.Registry()), pipeline.WithCheckerLogger(log))
	orch := pipeline.NewOrchestrator(cfg, checker, ps, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	env.srv = httptest.NewServer(NewServer(orch, annotate.NewLLMStats(time.Hour), log, cfg))
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t, false)
	resp, err := http.Get(env.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, false)

	resp, err := http.Get(env.srv.URL + "/api/rules")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/rules", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestRulesEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodGet, "/api/rules", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Fingerprint string             `json:"fingerprint"`
		Rules       []rules.Descriptor `json:"rules"`
	}](t, resp)
	assert.Len(t, body.Fingerprint, 16)
	require.Len(t, body.Rules, len(rules.Registry()))
	assert.Equal(t, "STRUCT-007", body.Rules[0].ID)
}

func TestCheckEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	body, ct := multipartBody(t, "thesis.txt", thesis, map[string]string{"research_question": "Wie wirkt Text?"})

	resp := env.do(t, http.MethodPost, "/api/check", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decode[docmodel.Report](t, resp)
	assert.Equal(t, "thesis.txt", report.Filename)
	assert.True(t, report.Stats.AIAnnotated)
	assert.GreaterOrEqual(t, len(report.Findings), len(rules.Registry()))
}

func TestCheckRejectsUnsupported(t *testing.T) {
	env := newTestEnv(t, false)
	body, ct := multipartBody(t, "data.csv", "a,b", nil)

	resp := env.do(t, http.MethodPost, "/api/check", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckRejectsOversize(t *testing.T) {
	env := newTestEnv(t, false)
	body, ct := multipartBody(t, "big.txt", strings.Repeat("x", (1<<20)+4096), nil)

	resp := env.do(t, http.MethodPost, "/api/check", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestJobLifecycleAndReports(t *testing.T) {
	env := newTestEnv(t, true)
	body, ct := multipartBody(t, "thesis.txt", thesis, map[string]string{"user_id": "u1", "doc_id": "d1"})

	resp := env.do(t, http.MethodPost, "/api/jobs", body, ct)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	accepted := decode[map[string]any](t, resp)
	jobID, _ := accepted["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "d1", accepted["doc_id"])

	var snap pipeline.JobSnapshot
	require.Eventually(t, func() bool {
		r := env.do(t, http.MethodGet, "/api/jobs/"+jobID, nil, "")
		if r.StatusCode != http.StatusOK {
			return false
		}
		snap = decode[pipeline.JobSnapshot](t, r)
		return snap.Status.Done()
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, pipeline.StatusCompleted, snap.Status)
	require.NotNil(t, snap.Report)

	resp = env.do(t, http.MethodGet, "/api/reports?user_id=u1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Reports []pipeline.PublishedReport `json:"reports"`
	}](t, resp)
	require.Len(t, list.Reports, 1)
	assert.Equal(t, "d1", list.Reports[0].DocID)

	resp = env.do(t, http.MethodDelete, "/api/reports/d1?user_id=u1", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/reports/d1?user_id=u1", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJobRequiresUser(t *testing.T) {
	env := newTestEnv(t, false)
	body, ct := multipartBody(t, "thesis.txt", thesis, nil)

	resp := env.do(t, http.MethodPost, "/api/jobs", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownJob(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodGet, "/api/jobs/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportsWithoutPathstore(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodGet, "/api/reports?user_id=u1", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLLMStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodGet, "/api/stats/llm", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "none", body["provider"])
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"thesis.docx":           "thesis.docx",
		"../../etc/passwd.txt":  "passwd.txt",
		`C:\Users\me\arbeit.md`: "arbeit.md",
		"":                      "unnamed",
		"a..b.txt":              "a_b.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
