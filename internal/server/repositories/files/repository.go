package files

import (
	"context"

	"github.com/mkorolis/studyvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.FileRecord) error
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.FileRecord, error)
	Delete(ctx context.Context, id string) error
}
