// Package tools implements the domain operations behind the agent's tool
// calls: project management, dataset profiling, training-code generation and
// the long-running training/deployment jobs.
package tools

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ml-agent-backend/core/dataset"
	"ml-agent-backend/core/dispatch"
	"ml-agent-backend/core/models"
	"ml-agent-backend/core/registry"
)

// ProjectStore is the project persistence the tools layer depends on.
type ProjectStore interface {
	CreateProject(project *models.Project) error
	GetProject(id string) (*models.Project, error)
	ListProjects() ([]*models.Project, error)
	AppendDataset(projectID, datasetID string) error
	AppendModel(projectID, modelID string) error
	AppendDeployment(projectID, deploymentID string) error
}

// Service wires the tool handlers to their collaborators.
type Service struct {
	projects   ProjectStore
	training   *registry.Registry
	deployment *registry.Registry
	locator    *dataset.Locator
	roots      []string
	workDir    string
}

// NewService creates the tool service. workDir receives generated training
// scripts.
func NewService(projects ProjectStore, training, deployment *registry.Registry, locator *dataset.Locator, roots []string, workDir string) *Service {
	return &Service{
		projects:   projects,
		training:   training,
		deployment: deployment,
		locator:    locator,
		roots:      roots,
		workDir:    workDir,
	}
}

// RegisterAll registers every tool with the dispatcher.
func (s *Service) RegisterAll(d *dispatch.Dispatcher) {
	d.Register(dispatch.HandlerSpec{
		Name:       "create_project",
		NameParams: []string{"project_name"},
		Required:   []string{"project_name"},
		Handler:    s.createProject,
	})
	d.Register(dispatch.HandlerSpec{
		Name:       "process_dataset",
		PathParams: []string{"dataset_path"},
		Required:   []string{"dataset_path"},
		Handler:    s.processDataset,
	})
	d.Register(dispatch.HandlerSpec{
		Name:       "generate_training_code",
		PathParams: []string{"dataset_path"},
		Required:   []string{"task_description", "dataset_path"},
		Handler:    s.generateTrainingCode,
	})
	d.Register(dispatch.HandlerSpec{
		Name:       "run_training_job",
		PathParams: []string{"dataset_path"},
		Handler:    s.runTrainingJob,
	})
	d.Register(dispatch.HandlerSpec{
		Name:       "deploy_model",
		PathParams: []string{"model_path"},
		Handler:    s.deployModel,
	})
	d.Register(dispatch.HandlerSpec{
		Name:    "list_projects",
		Handler: s.listProjects,
	})
	d.Register(dispatch.HandlerSpec{
		Name:    "debug_datasets",
		Handler: s.debugDatasets,
	})
}

func (s *Service) createProject(_ context.Context, params map[string]string) (string, error) {
	project := &models.Project{
		Name:        params["project_name"],
		Description: params["description"],
	}
	if err := s.projects.CreateProject(project); err != nil {
		return "", err
	}
	return fmt.Sprintf("Created project %q (%s)", project.Name, project.ID), nil
}

func (s *Service) processDataset(_ context.Context, params map[string]string) (string, error) {
	path := params["dataset_path"]

	profile, err := profileCSV(path)
	if err != nil {
		return "", err
	}

	if projectID := params["project_id"]; projectID != "" {
		if err := s.projects.AppendDataset(projectID, path); err != nil {
			log.Printf("Could not attach dataset to project %s: %v", projectID, err)
		}
	}

	return fmt.Sprintf("Dataset %s: %d rows, %d columns, target column %q",
		path, profile.Rows, len(profile.Columns), profile.TargetColumn), nil
}

func (s *Service) generateTrainingCode(_ context.Context, params map[string]string) (string, error) {
	task := params["task_description"]
	datasetPath := params["dataset_path"]

	profile, err := profileCSV(datasetPath)
	if err != nil {
		return "", err
	}

	script := renderTrainingScript(task, datasetPath, profile)

	dir := filepath.Join(s.workDir, "generated")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	scriptPath := filepath.Join(dir, "train.py")
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		return "", err
	}

	return fmt.Sprintf("Generated training script at %s", scriptPath), nil
}

func (s *Service) runTrainingJob(_ context.Context, params map[string]string) (string, error) {
	snap := s.training.Create(params)

	if projectID := params["project_id"]; projectID != "" {
		if err := s.projects.AppendModel(projectID, snap.ID); err != nil {
			log.Printf("Could not attach training job to project %s: %v", projectID, err)
		}
	}

	return fmt.Sprintf("Started training job %s", snap.ID), nil
}

func (s *Service) deployModel(_ context.Context, params map[string]string) (string, error) {
	snap := s.deployment.Create(params)

	if projectID := params["project_id"]; projectID != "" {
		if err := s.projects.AppendDeployment(projectID, snap.ID); err != nil {
			log.Printf("Could not attach deployment to project %s: %v", projectID, err)
		}
	}

	return fmt.Sprintf("Started deployment job %s", snap.ID), nil
}

func (s *Service) listProjects(_ context.Context, _ map[string]string) (string, error) {
	projects, err := s.projects.ListProjects()
	if err != nil {
		return "", err
	}
	if len(projects) == 0 {
		return "No projects found", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d projects:", len(projects)))
	for _, p := range projects {
		sb.WriteString(fmt.Sprintf("\n- %s (%s)", p.Name, p.ID))
	}
	return sb.String(), nil
}

func (s *Service) debugDatasets(_ context.Context, _ map[string]string) (string, error) {
	return s.locator.DebugReport(s.roots), nil
}

// csvProfile summarizes the structure of a CSV dataset.
type csvProfile struct {
	Rows         int
	Columns      []string
	TargetColumn string
}

// profileCSV reads header and row count. The target column heuristic mirrors
// the usual convention of the label living in the last column.
func profileCSV(path string) (*csvProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset not found: %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read dataset %s: %w", path, err)
	}

	rows := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read dataset %s: %w", path, err)
		}
		rows++
	}

	profile := &csvProfile{Rows: rows, Columns: header}
	if len(header) > 0 {
		profile.TargetColumn = header[len(header)-1]
	}
	return profile, nil
}

func renderTrainingScript(task, datasetPath string, profile *csvProfile) string {
	return fmt.Sprintf(`# Training script
# Task: %s
# Dataset: %s (%d rows)

import pandas as pd
from sklearn.model_selection import train_test_split
from sklearn.ensemble import RandomForestClassifier
from sklearn.metrics import classification_report

df = pd.read_csv(%q)
X = df.drop(columns=[%q])
y = df[%q]

X_train, X_test, y_train, y_test = train_test_split(X, y, test_size=0.2, random_state=42)

model = RandomForestClassifier(n_estimators=100, random_state=42)
model.fit(X_train, y_train)

print(classification_report(y_test, model.predict(X_test)))
`, task, datasetPath, profile.Rows, datasetPath, profile.TargetColumn, profile.TargetColumn)
}
