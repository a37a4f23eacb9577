package attachment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

func (ar *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/pathways/{pathwayId}/attachments", ar.HandleUpload)
	mux.HandleFunc("GET /api/v1/pathways/{pathwayId}/attachments", ar.HandleListForPathway)
	mux.HandleFunc("GET /api/v1/attachments/{attachmentId}", ar.HandleDownload)
	mux.HandleFunc("DELETE /api/v1/attachments/{attachmentId}", ar.HandleDelete)
}

// HandleUpload handles POST /api/v1/pathways/{pathwayId}/attachments
// Multipart form fields: file (required), stepId, uploadedById
func (ar *Router) HandleUpload(w http.ResponseWriter, r *http.Request) {
	pathwayID, err := uuid.Parse(r.PathValue("pathwayId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid pathwayId: %v", err), http.StatusBadRequest)
		return
	}

	// Max memory 32MB
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var stepID *uuid.UUID
	if raw := r.FormValue("stepId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid stepId: %v", err), http.StatusBadRequest)
			return
		}
		stepID = &parsed
	}

	var uploadedByID *uuid.UUID
	if raw := r.FormValue("uploadedById"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid uploadedById: %v", err), http.StatusBadRequest)
			return
		}
		uploadedByID = &parsed
	}

	attachment, err := ar.service.Upload(r.Context(), pathwayID, stepID, uploadedByID,
		header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Attachment upload failed", "error", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(attachment); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleListForPathway handles GET /api/v1/pathways/{pathwayId}/attachments
func (ar *Router) HandleListForPathway(w http.ResponseWriter, r *http.Request) {
	pathwayID, err := uuid.Parse(r.PathValue("pathwayId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid pathwayId: %v", err), http.StatusBadRequest)
		return
	}

	attachments, err := ar.service.ListForPathway(r.Context(), pathwayID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list attachments: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(attachments); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleDownload handles GET /api/v1/attachments/{attachmentId}
func (ar *Router) HandleDownload(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := uuid.Parse(r.PathValue("attachmentId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid attachmentId: %v", err), http.StatusBadRequest)
		return
	}

	reader, attachment, err := ar.service.Download(r.Context(), attachmentID)
	if err != nil {
		if errors.Is(err, ErrAttachmentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to download attachment: %v", err), http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	io.Copy(w, reader)
}

// HandleDelete handles DELETE /api/v1/attachments/{attachmentId}
func (ar *Router) HandleDelete(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := uuid.Parse(r.PathValue("attachmentId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid attachmentId: %v", err), http.StatusBadRequest)
		return
	}

	if err := ar.service.Delete(r.Context(), attachmentID); err != nil {
		if errors.Is(err, ErrAttachmentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to delete attachment: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
