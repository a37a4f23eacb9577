package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
	"github.com/OpenCarePath/carepath/internal/pathway/service"
)

type AssignmentRouter struct {
	as *service.AssignmentService
}

func NewAssignmentRouter(as *service.AssignmentService) *AssignmentRouter {
	return &AssignmentRouter{as: as}
}

// HandleCreateAssignment handles POST /api/v1/assignments
// Request body: CreateAssignmentDTO
func (a *AssignmentRouter) HandleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var createReq model.CreateAssignmentDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	assignment, err := a.as.CreateAssignment(r.Context(), &createReq)
	if err != nil {
		writeServiceError(w, "create assignment", err)
		return
	}

	writeJSON(w, http.StatusCreated, assignment)
}

// HandleGetAssignment handles GET /api/v1/assignments/{assignmentId}
func (a *AssignmentRouter) HandleGetAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := parseUUIDPathValue(w, r, "assignmentId")
	if !ok {
		return
	}

	assignment, err := a.as.GetAssignmentByID(r.Context(), assignmentID)
	if err != nil {
		writeServiceError(w, "get assignment", err)
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// HandleGetPathwayAssignments handles GET /api/v1/pathways/{pathwayId}/assignments
func (a *AssignmentRouter) HandleGetPathwayAssignments(w http.ResponseWriter, r *http.Request) {
	pathwayID, ok := parseUUIDPathValue(w, r, "pathwayId")
	if !ok {
		return
	}

	assignments, err := a.as.GetAssignmentsByPathwayID(r.Context(), pathwayID)
	if err != nil {
		writeServiceError(w, "get pathway assignments", err)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

// HandleGetUserAssignments handles GET /api/v1/users/{userId}/assignments
// Optional query params: offset, limit
func (a *AssignmentRouter) HandleGetUserAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDPathValue(w, r, "userId")
	if !ok {
		return
	}

	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	assignments, err := a.as.GetAssignmentsForUser(r.Context(), userID, offset, limit)
	if err != nil {
		writeServiceError(w, "get user assignments", err)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

// HandleUpdateAssignment handles PATCH /api/v1/assignments/{assignmentId}
// Request body: UpdateAssignmentDTO
func (a *AssignmentRouter) HandleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := parseUUIDPathValue(w, r, "assignmentId")
	if !ok {
		return
	}

	var updateReq model.UpdateAssignmentDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	assignment, err := a.as.UpdateAssignment(r.Context(), assignmentID, &updateReq)
	if err != nil {
		writeServiceError(w, "update assignment", err)
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// HandleDeleteAssignment handles DELETE /api/v1/assignments/{assignmentId}
func (a *AssignmentRouter) HandleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := parseUUIDPathValue(w, r, "assignmentId")
	if !ok {
		return
	}

	if err := a.as.DeleteAssignment(r.Context(), assignmentID); err != nil {
		writeServiceError(w, "delete assignment", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
