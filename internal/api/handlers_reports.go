package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/thesischeck/internal/pathstore"
	"github.com/dgallion1/thesischeck/internal/pipeline"
)

// handleListReports lists the published report summaries of a user.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	ps := s.orchestrator.PathstoreClient()
	if ps == nil {
		jsonError(w, "report publishing is not configured", http.StatusServiceUnavailable)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	children, err := ps.ListChildren(r.Context(), pathstore.ReportsPrefix(userID), 200)
	if err != nil {
		jsonError(w, "failed to list reports: "+err.Error(), http.StatusBadGateway)
		return
	}

	reports := make([]pipeline.PublishedReport, 0, len(children))
	for _, child := range children {
		var pr pipeline.PublishedReport
		if err := child.Decode(&pr); err != nil {
			s.log.Warn("skipping malformed report node", "key", child.Key, "error", err)
			continue
		}
		reports = append(reports, pr)
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// handleDeleteReport removes a published report summary.
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	ps := s.orchestrator.PathstoreClient()
	if ps == nil {
		jsonError(w, "report publishing is not configured", http.StatusServiceUnavailable)
		return
	}
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	key := pathstore.ReportKey(userID, docID)
	node, err := ps.GetNode(r.Context(), key)
	if err != nil {
		jsonError(w, "failed to read report: "+err.Error(), http.StatusBadGateway)
		return
	}
	if node == nil {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err := ps.DeleteNode(r.Context(), key, false); err != nil {
		jsonError(w, "failed to delete report: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": key})
}
