package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/pathway/model"
	"github.com/OpenCarePath/carepath/internal/pathway/service"
)

type PathwayRouter struct {
	engine *service.PathwayEngine
	bus    *event.Bus
}

func NewPathwayRouter(engine *service.PathwayEngine, bus *event.Bus) *PathwayRouter {
	return &PathwayRouter{
		engine: engine,
		bus:    bus,
	}
}

// HandleCreatePathway handles POST /api/v1/pathways
// Request body: CreatePathwayDTO
// Response: PatientPathway
func (p *PathwayRouter) HandleCreatePathway(w http.ResponseWriter, r *http.Request) {
	var createReq model.CreatePathwayDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	pathway, err := p.engine.InitializePathway(r.Context(), &createReq)
	if err != nil {
		writeServiceError(w, "create pathway", err)
		return
	}

	writeJSON(w, http.StatusCreated, pathway)
}

// HandleGetPathway handles GET /api/v1/pathways/{pathwayId}
func (p *PathwayRouter) HandleGetPathway(w http.ResponseWriter, r *http.Request) {
	pathwayID, ok := parseUUIDPathValue(w, r, "pathwayId")
	if !ok {
		return
	}

	pathway, err := p.engine.GetPathway(r.Context(), pathwayID)
	if err != nil {
		writeServiceError(w, "get pathway", err)
		return
	}

	writeJSON(w, http.StatusOK, pathway)
}

// HandleCompleteStep handles POST /api/v1/pathways/{pathwayId}/complete-step
// Request body: CompleteStepDTO
// Response: CompleteStepResultDTO
func (p *PathwayRouter) HandleCompleteStep(w http.ResponseWriter, r *http.Request) {
	pathwayID, ok := parseUUIDPathValue(w, r, "pathwayId")
	if !ok {
		return
	}

	var completeReq model.CompleteStepDTO
	if err := json.NewDecoder(r.Body).Decode(&completeReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := p.engine.CompleteStep(r.Context(), pathwayID, &completeReq)
	if err != nil {
		writeServiceError(w, "complete step", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleCancelPathway handles POST /api/v1/pathways/{pathwayId}/cancel
func (p *PathwayRouter) HandleCancelPathway(w http.ResponseWriter, r *http.Request) {
	pathwayID, ok := parseUUIDPathValue(w, r, "pathwayId")
	if !ok {
		return
	}

	pathway, err := p.engine.CancelPathway(r.Context(), pathwayID)
	if err != nil {
		writeServiceError(w, "cancel pathway", err)
		return
	}

	writeJSON(w, http.StatusOK, pathway)
}

// HandleGetPathwayEvents handles GET /api/v1/pathways/{pathwayId}/events
// Response: the pathway's event history in append order.
func (p *PathwayRouter) HandleGetPathwayEvents(w http.ResponseWriter, r *http.Request) {
	pathwayID, ok := parseUUIDPathValue(w, r, "pathwayId")
	if !ok {
		return
	}

	events, err := p.bus.EventsFor(r.Context(), event.AggregatePathway, pathwayID.String())
	if err != nil {
		writeServiceError(w, "get pathway events", err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// HandleGetPathwaysForPatient handles GET /api/v1/patients/{patientId}/pathways
// Optional query params: offset, limit
func (p *PathwayRouter) HandleGetPathwaysForPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := parseUUIDPathValue(w, r, "patientId")
	if !ok {
		return
	}

	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	pathways, err := p.engine.GetPathwaysForPatient(r.Context(), patientID, offset, limit)
	if err != nil {
		writeServiceError(w, "get patient pathways", err)
		return
	}

	writeJSON(w, http.StatusOK, pathways)
}

// HandleGetActivePathways handles GET /api/v1/pathways?status=active
// Optional query params: offset, limit
func (p *PathwayRouter) HandleGetActivePathways(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	pathways, err := p.engine.GetActivePathways(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, "get active pathways", err)
		return
	}

	writeJSON(w, http.StatusOK, pathways)
}

func parseUUIDPathValue(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		http.Error(w, fmt.Sprintf("missing %s in path", name), http.StatusBadRequest)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid %s: %v", name, err), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
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
