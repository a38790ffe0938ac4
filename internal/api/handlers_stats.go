package api

import (
	"net/http"

	"github.com/dgallion1/thesischeck/internal/rules"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": s.cfg.AIProvider,
		"stats":    s.stats.Snapshot(),
	})
}

// handleRules lists the active rules in evaluation order.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	eng := s.orchestrator.Checker().Engine()
	writeJSON(w, http.StatusOK, map[string]any{
		"fingerprint": eng.Fingerprint(),
		"rules":       rules.Describe(eng.Rules()),
	})
}
