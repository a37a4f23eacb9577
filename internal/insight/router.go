package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

func (ir *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/pathways/{pathwayId}/insights", ir.HandleListForPathway)
	mux.HandleFunc("GET /api/v1/patients/{patientId}/insights", ir.HandleListForPatient)
	mux.HandleFunc("POST /api/v1/insights/{insightId}/dismiss", ir.HandleDismiss)
}

// HandleListForPathway handles GET /api/v1/pathways/{pathwayId}/insights
// Optional query params: offset, limit
func (ir *Router) HandleListForPathway(w http.ResponseWriter, r *http.Request) {
	pathwayID, err := uuid.Parse(r.PathValue("pathwayId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid pathwayId: %v", err), http.StatusBadRequest)
		return
	}

	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	insights, err := ir.service.ListForPathway(r.Context(), pathwayID, offset, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list insights: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(insights); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleListForPatient handles GET /api/v1/patients/{patientId}/insights
// Optional query params: active, offset, limit
func (ir *Router) HandleListForPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.PathValue("patientId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid patientId: %v", err), http.StatusBadRequest)
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"

	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	insights, err := ir.service.ListForPatient(r.Context(), patientID, activeOnly, offset, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list insights: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(insights); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleDismiss handles POST /api/v1/insights/{insightId}/dismiss
func (ir *Router) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	insightID, err := uuid.Parse(r.PathValue("insightId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid insightId: %v", err), http.StatusBadRequest)
		return
	}

	if err := ir.service.Dismiss(r.Context(), insightID); err != nil {
		if errors.Is(err, ErrInsightNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to dismiss insight: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parsePagination(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	offset, limit := 0, 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil {
			http.Error(w, "invalid 'offset' query parameter, must be an integer", http.StatusBadRequest)
			return 0, 0, false
		}
		offset = parsed
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "invalid 'limit' query parameter, must be an integer", http.StatusBadRequest)
			return 0, 0, false
		}
		limit = parsed
	}
	return offset, limit, true
}
