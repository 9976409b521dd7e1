package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/logging"
	"github.com/mkorolis/studyvault/internal/server/models"
	"github.com/mkorolis/studyvault/internal/server/repositories/repomanager"
)

// ProjectService manages the projects that group uploaded files.
type ProjectService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	files  *FileService
	logger logging.Logger
}

// NewProjectService constructs a ProjectService. The FileService is needed
// so deleting a project also removes the backing objects of its files.
func NewProjectService(db *sql.DB, rm repomanager.RepositoryManager, files *FileService, logger logging.Logger) *ProjectService {
	return &ProjectService{
		db:     db,
		rm:     rm,
		files:  files,
		logger: logger.With("module", "project_service"),
	}
}

// Create adds a new project owned by the caller.
func (s *ProjectService) Create(ctx context.Context, ownerID, name string) (*models.Project, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	project := &models.Project{OwnerID: ownerID, Name: name}
	if err := s.rm.Projects(s.db).Create(ctx, project); err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return project, nil
}

// Get returns a single project after authorizing the caller.
func (s *ProjectService) Get(ctx context.Context, ownerID, projectID string) (*models.Project, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	project, err := s.rm.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return project, nil
}

// List returns the caller's projects.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]*models.Project, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	return s.rm.Projects(s.db).ListByOwner(ctx, ownerID)
}

// Delete removes a project together with its files. File deletion runs
// first, object store included, so the project row only disappears once
// nothing references it.
func (s *ProjectService) Delete(ctx context.Context, ownerID, projectID string) error {
	if _, err := s.Get(ctx, ownerID, projectID); err != nil {
		return err
	}

	records, err := s.rm.Files(s.db).ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("error listing project files: %w", err)
	}
	for _, rec := range records {
		if err := s.files.DeleteFile(ctx, ownerID, rec.ID); err != nil {
			return fmt.Errorf("error deleting file %s: %w", rec.ID, err)
		}
	}

	if err := s.rm.Projects(s.db).Delete(ctx, projectID); err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}
	return nil
}
