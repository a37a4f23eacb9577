package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/OpenCarePath/carepath/internal/pathway/service"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrPathwayNotFound),
		errors.Is(err, service.ErrPatientNotFound),
		errors.Is(err, service.ErrAssignmentNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, service.ErrStepMismatch),
		errors.Is(err, service.ErrConcurrentModification),
		errors.Is(err, service.ErrAssignmentExists):
		statusCode = http.StatusConflict
	case errors.Is(err, service.ErrInvalidTemplate),
		errors.Is(err, service.ErrTemplateHasNoSteps),
		errors.Is(err, service.ErrTemplateNotPublished),
		errors.Is(err, service.ErrPathwayNotActive),
		errors.Is(err, service.ErrStepNotInTemplate):
		statusCode = http.StatusBadRequest
	}
	http.Error(w, fmt.Sprintf("failed to %s: %v", action, err), statusCode)
}
