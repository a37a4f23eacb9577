package careteam

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// RegisterRoutes attaches the care team HTTP surface to the mux.
func (cr *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/care-teams", cr.HandleCreateCareTeam)
	mux.HandleFunc("GET /api/v1/care-teams/{teamId}", cr.HandleGetCareTeam)
	mux.HandleFunc("GET /api/v1/patients/{patientId}/care-teams", cr.HandleGetPatientCareTeams)
	mux.HandleFunc("POST /api/v1/care-teams/{teamId}/members", cr.HandleAddMember)
	mux.HandleFunc("DELETE /api/v1/care-teams/{teamId}/members/{userId}", cr.HandleRemoveMember)
}

func (cr *Router) writeError(w http.ResponseWriter, action string, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrCareTeamNotFound), errors.Is(err, ErrMemberNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, ErrMemberExists), errors.Is(err, ErrPrimaryMemberExists):
		statusCode = http.StatusConflict
	}
	http.Error(w, fmt.Sprintf("failed to %s: %v", action, err), statusCode)
}

// HandleCreateCareTeam handles POST /api/v1/care-teams
func (cr *Router) HandleCreateCareTeam(w http.ResponseWriter, r *http.Request) {
	var createReq CreateCareTeamDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	team, err := cr.service.CreateCareTeam(r.Context(), &createReq)
	if err != nil {
		cr.writeError(w, "create care team", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(team); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetCareTeam handles GET /api/v1/care-teams/{teamId}
func (cr *Router) HandleGetCareTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := uuid.Parse(r.PathValue("teamId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid teamId: %v", err), http.StatusBadRequest)
		return
	}

	team, err := cr.service.GetCareTeamByID(r.Context(), teamID)
	if err != nil {
		cr.writeError(w, "get care team", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(team); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetPatientCareTeams handles GET /api/v1/patients/{patientId}/care-teams
func (cr *Router) HandleGetPatientCareTeams(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.PathValue("patientId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid patientId: %v", err), http.StatusBadRequest)
		return
	}

	teams, err := cr.service.GetCareTeamsForPatient(r.Context(), patientID)
	if err != nil {
		cr.writeError(w, "get patient care teams", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(teams); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleAddMember handles POST /api/v1/care-teams/{teamId}/members
func (cr *Router) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := uuid.Parse(r.PathValue("teamId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid teamId: %v", err), http.StatusBadRequest)
		return
	}

	var addReq AddMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	member, err := cr.service.AddMember(r.Context(), teamID, &addReq)
	if err != nil {
		cr.writeError(w, "add care team member", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(member); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleRemoveMember handles DELETE /api/v1/care-teams/{teamId}/members/{userId}
func (cr *Router) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := uuid.Parse(r.PathValue("teamId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid teamId: %v", err), http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid userId: %v", err), http.StatusBadRequest)
		return
	}

	if err := cr.service.RemoveMember(r.Context(), teamID, userID); err != nil {
		cr.writeError(w, "remove care team member", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
