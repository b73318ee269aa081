package routes

import (
	"ml-agent-backend/api/rest/handlers"
	"ml-agent-backend/core/registry"
	"ml-agent-backend/core/repository"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, training, deployment *registry.Registry, projectRepo *repository.ProjectRepository) {
	jobHandler := handlers.NewJobHandler(training, deployment)
	projectHandler := handlers.NewProjectHandler(projectRepo)

	api := r.PathPrefix("/v1").Subrouter()

	// Job endpoints, per kind
	api.HandleFunc("/jobs/{kind}", jobHandler.SubmitJob).Methods("POST")
	api.HandleFunc("/jobs/{kind}", jobHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/{kind}/{id}", jobHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{kind}/{id}/logs", jobHandler.GetJobLogs).Methods("GET")
	api.HandleFunc("/jobs/{kind}/{id}/cancel", jobHandler.CancelJob).Methods("POST")

	// Project endpoints
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PUT")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")
}
