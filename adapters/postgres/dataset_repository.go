package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"datalens/internal/errors"
	"datalens/models"
	"datalens/ports"
)

// datasetRepository implements ports.DatasetRepository
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Create inserts a new dataset metadata record
func (r *datasetRepository) Create(ctx context.Context, record *models.DatasetRecord) error {
	query := `INSERT INTO datasets (
		id, name, source, filename, row_count, column_count, profile, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Name, record.Source, record.Filename,
		record.RowCount, record.ColumnCount, record.Profile, record.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create dataset record")
	}
	return nil
}

// GetByID retrieves a dataset record by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error) {
	query := `SELECT id, name, source, filename, row_count, column_count, profile, created_at
	FROM datasets WHERE id = $1`

	var record models.DatasetRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("dataset")
		}
		return nil, errors.Wrap(err, "failed to get dataset record")
	}
	return &record, nil
}

// List retrieves the most recently loaded dataset records
func (r *datasetRepository) List(ctx context.Context, limit int) ([]*models.DatasetRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, name, source, filename, row_count, column_count, profile, created_at
	FROM datasets ORDER BY created_at DESC LIMIT $1`

	var records []*models.DatasetRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list dataset records")
	}
	return records, nil
}
