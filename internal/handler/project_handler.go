package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/service"
)

// ProjectHandler serves the project dashboard and the project views.
type ProjectHandler struct {
	projectService *service.ProjectService
	logger         zerolog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *service.ProjectService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger.With().Str("handler", "project").Logger(),
	}
}

// RegisterRoutes registers the project routes. All routes require login.
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Get("/projects/dashboard", h.handleDashboard)
	r.Post("/projects/new", h.handleCreate)
	r.Get("/projects/{id}/editor", h.handleEditor)
	r.Get("/projects/{id}/overview", h.handleOverview)
	r.Get("/projects/{id}/checklist", h.handleChecklist)
	r.Post("/projects/{id}/save", h.handleSave)
	r.Post("/projects/{id}/delete", h.handleDelete)
}

// projectView is the dashboard representation of one project.
type projectView struct {
	*domain.Project
	Progress          float64 `json:"progress"`
	SubtasksCompleted int     `json:"subtasks_completed"`
	SubtasksTotal     int     `json:"subtasks_total"`
}

func (h *ProjectHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.projectService.ListWithProgress(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]projectView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, projectView{
			Project:           s.Project,
			Progress:          s.Progress,
			SubtasksCompleted: s.SubtasksCompleted,
			SubtasksTotal:     s.SubtasksTotal,
		})
	}

	writeSuccess(w, "", envelope{"projects": views})
}

type createProjectRequest struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

func (h *ProjectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.projectService.Create(r.Context(), service.CreateInput{
		Name:     req.Name,
		Template: req.Template,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "project created", envelope{"project": project})
}

// loadProject fetches the project or writes the plain 404 used by the
// project views.
func (h *ProjectHandler) loadProject(w http.ResponseWriter, r *http.Request) *domain.Project {
	id := chi.URLParam(r, "id")
	project, err := h.projectService.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Projekt nicht gefunden", http.StatusNotFound)
		return nil
	}
	return project
}

func (h *ProjectHandler) handleEditor(w http.ResponseWriter, r *http.Request) {
	project := h.loadProject(w, r)
	if project == nil {
		return
	}
	writeSuccess(w, "", envelope{"view": "editor", "project": project})
}

func (h *ProjectHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	project := h.loadProject(w, r)
	if project == nil {
		return
	}
	total, completed := project.SubtaskCounts()
	writeSuccess(w, "", envelope{
		"view":               "overview",
		"project":            project,
		"progress":           project.Progress(),
		"subtasks_completed": completed,
		"subtasks_total":     total,
	})
}

func (h *ProjectHandler) handleChecklist(w http.ResponseWriter, r *http.Request) {
	project := h.loadProject(w, r)
	if project == nil {
		return
	}
	writeSuccess(w, "", envelope{"view": "checklist", "project": project})
}

func (h *ProjectHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	existing := h.loadProject(w, r)
	if existing == nil {
		return
	}

	var project domain.Project
	if err := decodeJSON(r, &project); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The URL owns the identity; the body cannot move the document.
	project.ID = existing.ID
	if project.CreatedAt == "" {
		project.CreatedAt = existing.CreatedAt
	}

	if err := h.projectService.Save(r.Context(), &project); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "project saved", envelope{"project": project})
}

func (h *ProjectHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.projectService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w, "project deleted", nil)
}
