package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"ml-agent-backend/core/models"
	"ml-agent-backend/core/registry"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// JobHandler handles job-related HTTP requests for every job kind
type JobHandler struct {
	registries map[models.JobKind]*registry.Registry
	validate   *validator.Validate
}

// NewJobHandler creates a new job handler
func NewJobHandler(training, deployment *registry.Registry) *JobHandler {
	validate := validator.New()
	// Report failures by request field name, not Go struct field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})

	return &JobHandler{
		registries: map[models.JobKind]*registry.Registry{
			models.JobKindTraining:   training,
			models.JobKindDeployment: deployment,
		},
		validate: validate,
	}
}

// trainingJobRequest lists the fields a training submission must carry.
type trainingJobRequest struct {
	ProjectID   string `json:"project_id" validate:"required"`
	DatasetPath string `json:"dataset_path" validate:"required"`
	ModelType   string `json:"model_type" validate:"required"`
}

// deploymentJobRequest lists the fields a deployment submission must carry.
type deploymentJobRequest struct {
	ProjectID      string `json:"project_id" validate:"required"`
	ModelPath      string `json:"model_path" validate:"required"`
	DeploymentType string `json:"deployment_type" validate:"required"`
}

// registryFor resolves the {kind} path variable; nil means unknown kind.
func (h *JobHandler) registryFor(r *http.Request) *registry.Registry {
	kind := models.JobKind(mux.Vars(r)["kind"])
	return h.registries[kind]
}

// SubmitJob handles POST /v1/jobs/{kind}
func (h *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	reg := h.registryFor(r)
	if reg == nil {
		writeError(w, http.StatusNotFound, "Unknown job kind")
		return
	}

	var inputParams map[string]string
	if err := json.NewDecoder(r.Body).Decode(&inputParams); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validateParams(reg.Kind(), inputParams); err != nil {
		writeError(w, http.StatusBadRequest, requiredFieldMessage(err))
		return
	}

	snap := reg.Create(inputParams)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"job": snap,
	})
}

func (h *JobHandler) validateParams(kind models.JobKind, params map[string]string) error {
	switch kind {
	case models.JobKindTraining:
		return h.validate.Struct(trainingJobRequest{
			ProjectID:   params["project_id"],
			DatasetPath: params["dataset_path"],
			ModelType:   params["model_type"],
		})
	case models.JobKindDeployment:
		return h.validate.Struct(deploymentJobRequest{
			ProjectID:      params["project_id"],
			ModelPath:      params["model_path"],
			DeploymentType: params["deployment_type"],
		})
	}
	return nil
}

// requiredFieldMessage renders a validation failure for API clients without
// exposing internal struct names.
func requiredFieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "Missing required field: " + verrs[0].Field()
	}
	return "Invalid request body"
}

// GetJob handles GET /v1/jobs/{kind}/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	reg := h.registryFor(r)
	if reg == nil {
		writeError(w, http.StatusNotFound, "Unknown job kind")
		return
	}

	snap, err := reg.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job": snap,
	})
}

// GetJobLogs handles GET /v1/jobs/{kind}/{id}/logs
func (h *JobHandler) GetJobLogs(w http.ResponseWriter, r *http.Request) {
	reg := h.registryFor(r)
	if reg == nil {
		writeError(w, http.StatusNotFound, "Unknown job kind")
		return
	}

	logs, err := reg.Logs(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": logs,
	})
}

// CancelJob handles POST /v1/jobs/{kind}/{id}/cancel
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	reg := h.registryFor(r)
	if reg == nil {
		writeError(w, http.StatusNotFound, "Unknown job kind")
		return
	}

	id := mux.Vars(r)["id"]
	if !reg.Cancel(id) {
		writeError(w, http.StatusNotFound, "Job not found or cannot be cancelled")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": string(models.JobStatusCancelled),
	})
}

// ListJobs handles GET /v1/jobs/{kind}
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	reg := h.registryFor(r)
	if reg == nil {
		writeError(w, http.StatusNotFound, "Unknown job kind")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": reg.List(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
