package patient

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

// RegisterRoutes attaches the patient HTTP surface to the mux.
func (pr *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/patients", pr.HandleCreatePatient)
	mux.HandleFunc("GET /api/v1/patients", pr.HandleListPatients)
	mux.HandleFunc("GET /api/v1/patients/{patientId}", pr.HandleGetPatient)
	mux.HandleFunc("PATCH /api/v1/patients/{patientId}", pr.HandleUpdatePatient)
}

// HandleCreatePatient handles POST /api/v1/patients
func (pr *Router) HandleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var createReq CreatePatientDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	patient, err := pr.service.CreatePatient(r.Context(), &createReq)
	if err != nil {
		if errors.Is(err, ErrDuplicateMedicalRecordNumber) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("failed to create patient: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(patient); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetPatient handles GET /api/v1/patients/{patientId}
func (pr *Router) HandleGetPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.PathValue("patientId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid patientId: %v", err), http.StatusBadRequest)
		return
	}

	patient, err := pr.service.GetPatientByID(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to get patient: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(patient); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleListPatients handles GET /api/v1/patients
// Optional query params: search, offset, limit
func (pr *Router) HandleListPatients(w http.ResponseWriter, r *http.Request) {
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

	patients, err := pr.service.ListPatients(r.Context(), r.URL.Query().Get("search"), offset, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list patients: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(patients); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUpdatePatient handles PATCH /api/v1/patients/{patientId}
func (pr *Router) HandleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.PathValue("patientId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid patientId: %v", err), http.StatusBadRequest)
		return
	}

	var updateReq UpdatePatientDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	patient, err := pr.service.UpdatePatient(r.Context(), patientID, &updateReq)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to update patient: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(patient); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}
