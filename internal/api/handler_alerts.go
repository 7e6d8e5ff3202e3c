package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/service"
)

// AlertQueryHandler exposes the read-only alert views over HTTP for the
// dashboard and list screens. It never writes milestone state.
type AlertQueryHandler struct {
	alerts *service.AlertService
	logger *zap.Logger
}

func NewAlertQueryHandler(alerts *service.AlertService, logger *zap.Logger) *AlertQueryHandler {
	return &AlertQueryHandler{
		alerts: alerts,
		logger: logger,
	}
}

// Register mounts the query routes on the given mux.
func (h *AlertQueryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /alerts/open", h.GetOpenMilestones)
	mux.HandleFunc("GET /alerts/dashboard", h.GetDashboard)
}

// GetOpenMilestones handles GET /alerts/open?consultant_id=&as_of=
func (h *AlertQueryHandler) GetOpenMilestones(w http.ResponseWriter, r *http.Request) {
	consultantID, asOf, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	open, err := h.alerts.OpenMilestones(r.Context(), consultantID, asOf)
	if err != nil {
		h.logger.Error("Failed to list open milestones", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch open milestones")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"as_of":      asOf,
		"milestones": open,
	})
}

// GetDashboard handles GET /alerts/dashboard?consultant_id=&as_of=
func (h *AlertQueryHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	consultantID, asOf, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := h.alerts.Dashboard(r.Context(), consultantID, asOf)
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	writeJSON(w, http.StatusOK, dash)
}

// parseQuery reads the shared query parameters: consultant_id narrows to
// one consultant (absent means the administrator view), as_of overrides
// the classification instant (absent means now).
func parseQuery(r *http.Request) (*int64, time.Time, error) {
	var consultantID *int64
	if raw := r.URL.Query().Get("consultant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, time.Time{}, errBadParam("consultant_id")
		}
		consultantID = &id
	}

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, time.Time{}, errBadParam("as_of")
		}
		asOf = t
	}

	return consultantID, asOf, nil
}

type paramError string

func errBadParam(name string) error { return paramError(name) }

func (e paramError) Error() string { return "invalid " + string(e) + " parameter" }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
