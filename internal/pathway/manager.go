package pathway

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/pathway/router"
	"github.com/OpenCarePath/carepath/internal/pathway/service"
)

// Manager coordinates the pathway services and routers.
type Manager struct {
	templateService   *service.TemplateService
	pathwayService    *service.PathwayService
	assignmentService *service.AssignmentService
	engine            *service.PathwayEngine

	pathwayRouter    *router.PathwayRouter
	templateRouter   *router.TemplateRouter
	assignmentRouter *router.AssignmentRouter
}

// NewManager builds the pathway domain: template authoring, the execution
// engine, and step assignments, all publishing through the given event bus.
func NewManager(db *gorm.DB, bus *event.Bus, patients service.PatientProvider) *Manager {
	templateService := service.NewTemplateService(db)
	pathwayService := service.NewPathwayService(db)
	assignmentService := service.NewAssignmentService(db, bus)
	engine := service.NewPathwayEngine(db, templateService, patients, pathwayService, bus, service.NewExpressionEvaluator())

	m := &Manager{
		templateService:   templateService,
		pathwayService:    pathwayService,
		assignmentService: assignmentService,
		engine:            engine,
	}

	m.pathwayRouter = router.NewPathwayRouter(engine, bus)
	m.templateRouter = router.NewTemplateRouter(templateService)
	m.assignmentRouter = router.NewAssignmentRouter(assignmentService)

	return m
}

// Engine exposes the pathway engine for other packages.
func (m *Manager) Engine() *service.PathwayEngine {
	return m.engine
}

// RegisterRoutes attaches the pathway HTTP surface to the mux.
func (m *Manager) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/templates", m.templateRouter.HandleCreateTemplate)
	mux.HandleFunc("GET /api/v1/templates", m.templateRouter.HandleListTemplates)
	mux.HandleFunc("GET /api/v1/templates/{templateId}", m.templateRouter.HandleGetTemplate)
	mux.HandleFunc("PATCH /api/v1/templates/{templateId}", m.templateRouter.HandleUpdateTemplate)
	mux.HandleFunc("POST /api/v1/templates/{templateId}/publish", m.templateRouter.HandlePublishTemplate)
	mux.HandleFunc("POST /api/v1/templates/{templateId}/archive", m.templateRouter.HandleArchiveTemplate)

	mux.HandleFunc("POST /api/v1/pathways", m.pathwayRouter.HandleCreatePathway)
	mux.HandleFunc("GET /api/v1/pathways", m.pathwayRouter.HandleGetActivePathways)
	mux.HandleFunc("GET /api/v1/pathways/{pathwayId}", m.pathwayRouter.HandleGetPathway)
	mux.HandleFunc("POST /api/v1/pathways/{pathwayId}/complete-step", m.pathwayRouter.HandleCompleteStep)
	mux.HandleFunc("POST /api/v1/pathways/{pathwayId}/cancel", m.pathwayRouter.HandleCancelPathway)
	mux.HandleFunc("GET /api/v1/pathways/{pathwayId}/events", m.pathwayRouter.HandleGetPathwayEvents)
	mux.HandleFunc("GET /api/v1/patients/{patientId}/pathways", m.pathwayRouter.HandleGetPathwaysForPatient)

	mux.HandleFunc("POST /api/v1/assignments", m.assignmentRouter.HandleCreateAssignment)
	mux.HandleFunc("GET /api/v1/assignments/{assignmentId}", m.assignmentRouter.HandleGetAssignment)
	mux.HandleFunc("PATCH /api/v1/assignments/{assignmentId}", m.assignmentRouter.HandleUpdateAssignment)
	mux.HandleFunc("DELETE /api/v1/assignments/{assignmentId}", m.assignmentRouter.HandleDeleteAssignment)
	mux.HandleFunc("GET /api/v1/pathways/{pathwayId}/assignments", m.assignmentRouter.HandleGetPathwayAssignments)
	mux.HandleFunc("GET /api/v1/users/{userId}/assignments", m.assignmentRouter.HandleGetUserAssignments)
}
