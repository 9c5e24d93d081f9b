package ports

import (
	"context"

	"github.com/google/uuid"

	"datalens/models"
)

// DatasetRepository persists dataset metadata
type DatasetRepository interface {
	Create(ctx context.Context, record *models.DatasetRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error)
	List(ctx context.Context, limit int) ([]*models.DatasetRecord, error)
}

// AnswerRepository persists the question/answer history
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	ListByDataset(ctx context.Context, datasetID uuid.UUID, limit int) ([]*models.Answer, error)
}
