package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/thesischeck/internal/config"
	"github.com/dgallion1/thesischeck/internal/pathstore"
)

type recordingStore struct {
	mu   sync.Mutex
	puts map[string]json.RawMessage
}

func (s *recordingStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.puts[strings.TrimPrefix(r.URL.Path, "/kv/")] = body.Value
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *recordingStore) get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.puts[key]
	return v, ok
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	var snap JobSnapshot
	require.Eventually(t, func() bool {
		snap = job.Snapshot()
		return snap.Status.Done()
	}, 5*time.Second, 10*time.Millisecond)
	return snap
}

func testConfig() config.Config {
	return config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
}

func TestOrchestratorProcessesAndPublishes(t *testing.T) {
	store := &recordingStore{puts: map[string]json.RawMessage{}}
	srv := httptest.NewServer(store)
	defer srv.Close()

	ps := pathstore.NewClient(srv.URL, "key")
	o := NewOrchestrator(testConfig(), newTestChecker(t), ps, slog.Default())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("u1", "doc-1", "thesis.txt", []byte(thesisText))
	require.NoError(t, o.Submit(job))
	assert.Same(t, job, o.GetJob(job.ID))

	snap := waitDone(t, job)
	assert.Equal(t, StatusCompleted, snap.Status)
	require.NotNil(t, snap.Report)
	assert.Positive(t, snap.Summary.Error)
	assert.Nil(t, job.FileData(), "upload is released once the report is stored")

	raw, ok := store.get("thesischeck/users/u1/reports/doc-1")
	require.True(t, ok)
	var pub PublishedReport
	require.NoError(t, json.Unmarshal(raw, &pub))
	assert.Equal(t, "doc-1", pub.DocID)
	assert.Equal(t, job.ID, pub.JobID)
	assert.Equal(t, snap.Report.Summary, pub.Summary)
}

func TestOrchestratorFailedJob(t *testing.T) {
	o := NewOrchestrator(testConfig(), newTestChecker(t), nil, slog.Default())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("u1", "", "notes.csv", []byte("a,b"))
	require.NoError(t, o.Submit(job))

	snap := waitDone(t, job)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, string(StatusReading), snap.Phase)
	require.Len(t, snap.Errors, 1)
	assert.Contains(t, snap.Errors[0], "unsupported")
	assert.Nil(t, job.FileData())
}

func TestOrchestratorQueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 0, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, newTestChecker(t), nil, slog.Default())

	require.NoError(t, o.Submit(NewJob("u", "", "a.txt", nil)))
	assert.Equal(t, 1, o.QueueDepth())

	overflow := NewJob("u", "", "b.txt", nil)
	err := o.Submit(overflow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
	assert.Equal(t, StatusFailed, overflow.Snapshot().Status)
}
