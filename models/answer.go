package models

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Answer is one persisted question/answer exchange about a dataset
type Answer struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DatasetID     uuid.UUID `json:"dataset_id" db:"dataset_id"`
	Question      string    `json:"question" db:"question"`
	Answer        string    `json:"answer" db:"answer"`
	UsedWebSearch bool      `json:"used_web_search" db:"used_web_search"`
	SnippetCount  int       `json:"snippet_count" db:"snippet_count"`
	Model         string    `json:"model" db:"model"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewAnswer creates an answer record with a fresh ID and timestamp
func NewAnswer(datasetID uuid.UUID, question, answer, model string, usedWebSearch bool, snippetCount int) *Answer {
	return &Answer{
		ID:            uuid.New(),
		DatasetID:     datasetID,
		Question:      question,
		Answer:        answer,
		UsedWebSearch: usedWebSearch,
		SnippetCount:  snippetCount,
		Model:         model,
		CreatedAt:     time.Now(),
	}
}

// AnswersCSV renders the answer history as a downloadable CSV table
func AnswersCSV(answers []*Answer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Question", "Answer", "Model", "Web Search", "Timestamp"}); err != nil {
		return nil, err
	}
	for _, a := range answers {
		record := []string{
			a.Question,
			a.Answer,
			a.Model,
			strconv.FormatBool(a.UsedWebSearch),
			a.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
