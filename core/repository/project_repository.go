package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ml-agent-backend/core/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrProjectNotFound is returned when the referenced project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// CreateProject inserts a new project. An id is allocated when absent.
func (r *ProjectRepository) CreateProject(project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO projects (id, name, description, datasets, models, deployments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query,
		project.ID,
		project.Name,
		project.Description,
		pq.Array(project.Datasets),
		pq.Array(project.Models),
		pq.Array(project.Deployments),
		project.CreatedAt,
	)
	return err
}

// GetProject retrieves a project by ID
func (r *ProjectRepository) GetProject(id string) (*models.Project, error) {
	query := `
		SELECT id, name, description, datasets, models, deployments, created_at
		FROM projects
		WHERE id = $1
	`

	var project models.Project
	err := r.db.QueryRow(query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		pq.Array(&project.Datasets),
		pq.Array(&project.Models),
		pq.Array(&project.Deployments),
		&project.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// UpdateProject updates name and/or description; nil fields are left as-is.
func (r *ProjectRepository) UpdateProject(id string, name, description *string) (*models.Project, error) {
	query := `
		UPDATE projects
		SET name = COALESCE($2, name), description = COALESCE($3, description)
		WHERE id = $1
	`

	result, err := r.db.Exec(query, id, name, description)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrProjectNotFound
	}

	return r.GetProject(id)
}

// DeleteProject removes a project by ID
func (r *ProjectRepository) DeleteProject(id string) error {
	result, err := r.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ListProjects returns all projects in creation order
func (r *ProjectRepository) ListProjects() ([]*models.Project, error) {
	query := `
		SELECT id, name, description, datasets, models, deployments, created_at
		FROM projects
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			pq.Array(&project.Datasets),
			pq.Array(&project.Models),
			pq.Array(&project.Deployments),
			&project.CreatedAt,
		)
		if err != nil {
			continue
		}
		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// AppendDataset records a dataset id on the project
func (r *ProjectRepository) AppendDataset(projectID, datasetID string) error {
	return r.appendResource(projectID, "datasets", datasetID)
}

// AppendModel records a trained model id on the project
func (r *ProjectRepository) AppendModel(projectID, modelID string) error {
	return r.appendResource(projectID, "models", modelID)
}

// AppendDeployment records a deployment id on the project
func (r *ProjectRepository) AppendDeployment(projectID, deploymentID string) error {
	return r.appendResource(projectID, "deployments", deploymentID)
}

func (r *ProjectRepository) appendResource(projectID, column, resourceID string) error {
	// column comes from the fixed set above, never from input.
	query := fmt.Sprintf(`UPDATE projects SET %s = array_append(%s, $2) WHERE id = $1`, column, column)

	result, err := r.db.Exec(query, projectID, resourceID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrProjectNotFound
	}
	return nil
}
