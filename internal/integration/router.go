package integration

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
	mux.HandleFunc("POST /api/v1/integrations/endpoints", ir.HandleCreateEndpoint)
	mux.HandleFunc("GET /api/v1/integrations/endpoints", ir.HandleListEndpoints)
	mux.HandleFunc("GET /api/v1/integrations/endpoints/{endpointId}", ir.HandleGetEndpoint)
	mux.HandleFunc("PATCH /api/v1/integrations/endpoints/{endpointId}", ir.HandleUpdateEndpoint)
	mux.HandleFunc("DELETE /api/v1/integrations/endpoints/{endpointId}", ir.HandleDeleteEndpoint)
	mux.HandleFunc("GET /api/v1/integrations/endpoints/{endpointId}/requests", ir.HandleListRequests)
}

// HandleCreateEndpoint handles POST /api/v1/integrations/endpoints
func (ir *Router) HandleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var dto CreateEndpointDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	endpoint, err := ir.service.CreateEndpoint(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, ErrInvalidEndpoint) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("failed to create endpoint: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(endpoint); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleListEndpoints handles GET /api/v1/integrations/endpoints
func (ir *Router) HandleListEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := ir.service.ListEndpoints(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list endpoints: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(endpoints); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetEndpoint handles GET /api/v1/integrations/endpoints/{endpointId}
func (ir *Router) HandleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	endpointID, ok := ir.parseEndpointID(w, r)
	if !ok {
		return
	}

	endpoint, err := ir.service.GetEndpointByID(r.Context(), endpointID)
	if err != nil {
		if errors.Is(err, ErrEndpointNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to get endpoint: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(endpoint); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUpdateEndpoint handles PATCH /api/v1/integrations/endpoints/{endpointId}
func (ir *Router) HandleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	endpointID, ok := ir.parseEndpointID(w, r)
	if !ok {
		return
	}

	var dto UpdateEndpointDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	endpoint, err := ir.service.UpdateEndpoint(r.Context(), endpointID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrEndpointNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrInvalidEndpoint):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, fmt.Sprintf("failed to update endpoint: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(endpoint); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleDeleteEndpoint handles DELETE /api/v1/integrations/endpoints/{endpointId}
func (ir *Router) HandleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	endpointID, ok := ir.parseEndpointID(w, r)
	if !ok {
		return
	}

	if err := ir.service.DeleteEndpoint(r.Context(), endpointID); err != nil {
		if errors.Is(err, ErrEndpointNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to delete endpoint: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListRequests handles GET /api/v1/integrations/endpoints/{endpointId}/requests
// Optional query params: offset, limit
func (ir *Router) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	endpointID, ok := ir.parseEndpointID(w, r)
	if !ok {
		return
	}

	offset, limit := 0, 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil {
			http.Error(w, "invalid 'offset' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		offset = parsed
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "invalid 'limit' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	requests, err := ir.service.ListRequests(r.Context(), endpointID, offset, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list requests: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(requests); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

func (ir *Router) parseEndpointID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	endpointID, err := uuid.Parse(r.PathValue("endpointId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid endpointId: %v", err), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return endpointID, true
}
