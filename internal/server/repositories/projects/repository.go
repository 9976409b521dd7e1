package projects

import (
	"context"

	"github.com/mkorolis/studyvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error)
	Delete(ctx context.Context, id string) error
}
