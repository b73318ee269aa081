package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ml-agent-backend/core/models"
	"ml-agent-backend/core/repository"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// ProjectHandler handles project CRUD requests
type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	validate    *validator.Validate
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectRepo *repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		validate:    validator.New(),
	}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateProject handles POST /v1/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required field: name")
		return
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.projectRepo.CreateProject(project); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"project": project,
	})
}

// GetProject handles GET /v1/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectRepo.GetProject(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch project: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project": project,
	})
}

// UpdateProject handles PUT /v1/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projectRepo.UpdateProject(mux.Vars(r)["id"], req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update project: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project": project,
	})
}

// DeleteProject handles DELETE /v1/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projectRepo.DeleteProject(mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete project: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Project deleted",
	})
}

// ListProjects handles GET /v1/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.ListProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects: "+err.Error())
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}
