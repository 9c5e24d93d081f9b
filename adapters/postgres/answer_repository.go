package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"datalens/internal/errors"
	"datalens/models"
	"datalens/ports"
)

// answerRepository implements ports.AnswerRepository
type answerRepository struct {
	db *sqlx.DB
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *sqlx.DB) ports.AnswerRepository {
	return &answerRepository{db: db}
}

// Create inserts a new answer record
func (r *answerRepository) Create(ctx context.Context, answer *models.Answer) error {
	query := `INSERT INTO answers (
		id, dataset_id, question, answer, used_web_search, snippet_count, model, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		answer.ID, answer.DatasetID, answer.Question, answer.Answer,
		answer.UsedWebSearch, answer.SnippetCount, answer.Model, answer.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create answer record")
	}
	return nil
}

// ListByDataset retrieves the answer history for a dataset, oldest first
func (r *answerRepository) ListByDataset(ctx context.Context, datasetID uuid.UUID, limit int) ([]*models.Answer, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, dataset_id, question, answer, used_web_search, snippet_count, model, created_at
	FROM answers WHERE dataset_id = $1 ORDER BY created_at ASC LIMIT $2`

	var answers []*models.Answer
	if err := r.db.SelectContext(ctx, &answers, query, datasetID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list answers")
	}
	return answers, nil
}
