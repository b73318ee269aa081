package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ml-agent-backend/api/rest/routes"
	"ml-agent-backend/config"
	"ml-agent-backend/core/models"
	"ml-agent-backend/core/registry"
	"ml-agent-backend/core/repository"
	"ml-agent-backend/core/work"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize database
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Database connected successfully")

	projectRepo := repository.NewProjectRepository(db)

	// One registry per job kind; each owns its jobs and their goroutines.
	training := registry.New(models.JobKindTraining, work.TrainingRunner(cfg.TrainingStepDelay))
	deployment := registry.New(models.JobKindDeployment, work.DeploymentRunner(cfg.DeploymentDelay, cfg.EndpointBase))

	r := mux.NewRouter()
	routes.SetupRoutes(r, training, deployment, projectRepo)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
