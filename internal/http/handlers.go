package http

import (
	"encoding/json"
	"io"
	"net/http"

	"benchboard/internal/classify"
	"benchboard/internal/ingest"
	"benchboard/internal/log"
	"benchboard/internal/metrics"
)

// maxBodyBytes caps request bodies; rosters and import payloads are
// bounded in practice, anything larger is a client error.
const maxBodyBytes = 16 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleClassifyRecords ingests a roster payload, classifies it and saves
// the resulting aggregate for the dashboard in the path.
func (s *Server) handleClassifyRecords(w http.ResponseWriter, r *http.Request) {
	dashboardID := r.PathValue("id")
	if dashboardID == "" {
		writeError(w, http.StatusBadRequest, "missing dashboard id")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	records, err := ingest.FromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	agg := classify.Records(records)
	metrics.RecordsClassified.Add(float64(len(records)))

	persisted := s.manager.SaveDashboardData(r.Context(), dashboardID, agg)
	if !persisted {
		s.logger.WarnContext(r.Context(), "aggregate kept in memory only",
			log.FieldDashboardID, dashboardID, log.FieldOperation, log.OpSave)
	}
	s.logger.InfoContext(r.Context(), "records classified",
		log.FieldDashboardID, dashboardID,
		log.FieldRecordCount, len(records),
		log.FieldOperation, log.OpClassify)

	writeJSON(w, http.StatusOK, map[string]any{
		"dashboardId": dashboardID,
		"recordCount": len(records),
		"persisted":   persisted,
		"data":        agg,
	})
}

func (s *Server) handleSwitchDashboard(w http.ResponseWriter, r *http.Request) {
	dashboardID := r.PathValue("id")
	if dashboardID == "" {
		writeError(w, http.StatusBadRequest, "missing dashboard id")
		return
	}

	s.manager.SwitchDashboard(r.Context(), dashboardID)
	data := s.manager.CurrentData()

	writeJSON(w, http.StatusOK, map[string]any{
		"dashboardId": dashboardID,
		"hasData":     data != nil,
	})
}

func (s *Server) handleSyncDashboard(w http.ResponseWriter, r *http.Request) {
	dashboardID := r.PathValue("id")
	inDurable := s.store.Sync(r.Context(), dashboardID)
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboardId": dashboardID,
		"inDurable":   inDurable,
	})
}

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboardID := r.PathValue("id")
	agg := s.store.Load(r.Context(), dashboardID)
	if agg == nil {
		writeError(w, http.StatusNotFound, "no data for dashboard "+dashboardID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboardId": dashboardID,
		"data":        agg,
	})
}

func (s *Server) handleGetAge(w http.ResponseWriter, r *http.Request) {
	dashboardID := r.PathValue("id")
	age, ok := s.store.AgeMinutes(r.Context(), dashboardID)
	if !ok {
		writeError(w, http.StatusNotFound, "no data for dashboard "+dashboardID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboardId": dashboardID,
		"ageMinutes":  age,
	})
}

func (s *Server) handleClearDashboard(w http.ResponseWriter, r *http.Request) {
	dashboardID := r.PathValue("id")
	if !s.store.Clear(r.Context(), dashboardID) {
		writeError(w, http.StatusInternalServerError, "clear failed for dashboard "+dashboardID)
		return
	}
	s.manager.Forget(dashboardID)
	writeJSON(w, http.StatusOK, map[string]any{"dashboardId": dashboardID, "cleared": true})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if !s.store.ClearAll(r.Context()) {
		writeError(w, http.StatusInternalServerError, "clear all failed")
		return
	}
	s.manager.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	current := s.manager.CurrentDashboard()
	data := s.manager.CurrentData()
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboardId": current,
		"loading":     current != "" && s.manager.IsLoading(current),
		"data":        data,
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats(r.Context()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	text, ok := s.codec.Export(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="benchboard-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	if !s.codec.Import(r.Context(), string(body)) {
		writeError(w, http.StatusBadRequest, "invalid import payload")
		return
	}
	s.manager.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"imported": true})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed := s.store.CleanupOldData(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}
