package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
	"github.com/OpenCarePath/carepath/internal/pathway/service"
)

type TemplateRouter struct {
	ts *service.TemplateService
}

func NewTemplateRouter(ts *service.TemplateService) *TemplateRouter {
	return &TemplateRouter{ts: ts}
}

// HandleCreateTemplate handles POST /api/v1/templates
// Request body: CreateTemplateDTO
func (t *TemplateRouter) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var createReq model.CreateTemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	template, err := t.ts.CreateTemplate(r.Context(), &createReq)
	if err != nil {
		writeServiceError(w, "create template", err)
		return
	}

	writeJSON(w, http.StatusCreated, template)
}

// HandleGetTemplate handles GET /api/v1/templates/{templateId}
func (t *TemplateRouter) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := parseUUIDPathValue(w, r, "templateId")
	if !ok {
		return
	}

	template, err := t.ts.GetTemplateWithSteps(r.Context(), templateID)
	if err != nil {
		writeServiceError(w, "get template", err)
		return
	}

	writeJSON(w, http.StatusOK, template)
}

// HandleListTemplates handles GET /api/v1/templates
// Optional query params: specialty, status, offset, limit
func (t *TemplateRouter) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	specialty := r.URL.Query().Get("specialty")
	status := model.TemplateStatus(r.URL.Query().Get("status"))

	templates, err := t.ts.ListTemplates(r.Context(), specialty, status, offset, limit)
	if err != nil {
		writeServiceError(w, "list templates", err)
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

// HandleUpdateTemplate handles PATCH /api/v1/templates/{templateId}
// Request body: UpdateTemplateDTO
func (t *TemplateRouter) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := parseUUIDPathValue(w, r, "templateId")
	if !ok {
		return
	}

	var updateReq model.UpdateTemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	template, err := t.ts.UpdateTemplate(r.Context(), templateID, &updateReq)
	if err != nil {
		writeServiceError(w, "update template", err)
		return
	}

	writeJSON(w, http.StatusOK, template)
}

// HandlePublishTemplate handles POST /api/v1/templates/{templateId}/publish
func (t *TemplateRouter) HandlePublishTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := parseUUIDPathValue(w, r, "templateId")
	if !ok {
		return
	}

	template, err := t.ts.PublishTemplate(r.Context(), templateID)
	if err != nil {
		writeServiceError(w, "publish template", err)
		return
	}

	writeJSON(w, http.StatusOK, template)
}

// HandleArchiveTemplate handles POST /api/v1/templates/{templateId}/archive
func (t *TemplateRouter) HandleArchiveTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := parseUUIDPathValue(w, r, "templateId")
	if !ok {
		return
	}

	template, err := t.ts.ArchiveTemplate(r.Context(), templateID)
	if err != nil {
		writeServiceError(w, "archive template", err)
		return
	}

	writeJSON(w, http.StatusOK, template)
}
