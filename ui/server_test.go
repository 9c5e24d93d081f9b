package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/adapters/llm"
	"datalens/ai"
	"datalens/internal"
	"datalens/internal/api"
	"datalens/internal/dataset"
	"datalens/internal/errors"
	"datalens/models"
)

type memDatasetRepo struct {
	records map[uuid.UUID]*models.DatasetRecord
}

func (m *memDatasetRepo) Create(ctx context.Context, record *models.DatasetRecord) error {
	m.records[record.ID] = record
	return nil
}

func (m *memDatasetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, errors.NotFound("dataset")
	}
	return record, nil
}

func (m *memDatasetRepo) List(ctx context.Context, limit int) ([]*models.DatasetRecord, error) {
	out := make([]*models.DatasetRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, record)
	}
	return out, nil
}

type memAnswerRepo struct {
	answers []*models.Answer
}

func (m *memAnswerRepo) Create(ctx context.Context, answer *models.Answer) error {
	m.answers = append(m.answers, answer)
	return nil
}

func (m *memAnswerRepo) ListByDataset(ctx context.Context, datasetID uuid.UUID, limit int) ([]*models.Answer, error) {
	out := make([]*models.Answer, 0, len(m.answers))
	for _, a := range m.answers {
		if a.DatasetID == datasetID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, mock *llm.MockClient) (*Server, *memAnswerRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := internal.NewLogger(internal.LogLevelError)
	datasetRepo := &memDatasetRepo{records: make(map[uuid.UUID]*models.DatasetRecord)}
	answerRepo := &memAnswerRepo{}

	storage := dataset.NewLocalFileStorage(&dataset.StorageConfig{
		BasePath:    t.TempDir(),
		MaxFileSize: 1 << 20,
		ChunkSize:   4096,
	})
	processor := dataset.NewProcessor(storage, nil, datasetRepo, logger)
	hub := api.NewSSEHub()
	analyst := ai.NewAnalyst(mock, nil, answerRepo, hub, "llama3-8b-8192", 3, logger)

	server, err := NewServer(Deps{
		Processor:     processor,
		Analyst:       analyst,
		Datasets:      datasetRepo,
		Answers:       answerRepo,
		Hub:           hub,
		Logger:        logger,
		SearchEnabled: false,
		SheetsEnabled: false,
		MaxUploadSize: 1 << 20,
	})
	require.NoError(t, err)
	return server, answerRepo
}

func uploadCSV(t *testing.T, server *Server, name, content string) uuid.UUID {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

const salesCSV = "region,revenue\nnorth,1200.5\nsouth,980\neast,1430\nwest,640\n"

func TestUploadAPI(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})
	id := uploadCSV(t, server, "sales.csv", salesCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id.String(), nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows    int      `json:"rows"`
		Columns []string `json:"columns"`
		Numeric []string `json:"numeric"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Rows)
	assert.Equal(t, []string{"region", "revenue"}, resp.Columns)
	assert.Equal(t, []string{"revenue"}, resp.Numeric)
}

func TestUploadAPI_UnsupportedExtension(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("not tabular"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestSheetAPI_NotConfigured(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/sheet",
		strings.NewReader(`{"url":"https://docs.google.com/spreadsheets/d/abc123/edit"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFIG_INVALID")
}

func TestSummaryAPI(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})
	id := uploadCSV(t, server, "sales.csv", salesCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id.String()+"/summary", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows    int `json:"rows"`
		Columns int `json:"columns"`
		Stats   []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Rows)
	assert.Equal(t, 2, resp.Columns)
	require.Len(t, resp.Stats, 2)
	assert.Equal(t, "categorical", resp.Stats[0].Type)
	assert.Equal(t, "numeric", resp.Stats[1].Type)
}

func TestHistogramAPI(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})
	id := uploadCSV(t, server, "sales.csv", salesCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id.String()+"/histogram?column=revenue&bins=2", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Column string `json:"column"`
		Bins   []struct {
			Count int `json:"count"`
		} `json:"bins"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "revenue", resp.Column)
	require.Len(t, resp.Bins, 2)

	total := 0
	for _, bin := range resp.Bins {
		total += bin.Count
	}
	assert.Equal(t, 4, total)
}

func TestHistogramAPI_MissingColumn(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})
	id := uploadCSV(t, server, "sales.csv", salesCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id.String()+"/histogram", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskAPI(t *testing.T) {
	mock := &llm.MockClient{Response: "The east region leads on revenue."}
	server, answerRepo := newTestServer(t, mock)
	id := uploadCSV(t, server, "sales.csv", salesCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id.String()+"/ask",
		strings.NewReader(`{"question":"Which region earns most?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The east region leads on revenue.", resp.Answer)
	assert.Contains(t, mock.LastSystem, "Analyzing a dataset with 4 rows")
	require.Len(t, answerRepo.answers, 1)
}

func TestAskAPI_NotLoaded(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+uuid.NewString()+"/ask",
		strings.NewReader(`{"question":"anything?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnswersCSVDownload(t *testing.T) {
	mock := &llm.MockClient{Response: "Steady growth."}
	server, _ := newTestServer(t, mock)
	id := uploadCSV(t, server, "sales.csv", salesCSV)

	askBody := strings.NewReader(`{"question":"Any trend?"}`)
	askReq := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id.String()+"/ask", askBody)
	askReq.Header.Set("Content-Type", "application/json")
	askRec := httptest.NewRecorder()
	server.Router().ServeHTTP(askRec, askReq)
	require.Equal(t, http.StatusOK, askRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id.String()+"/answers.csv", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Disposition"), "analysis_results.csv")
	assert.Contains(t, rec.Body.String(), "Question,Answer,Model,Web Search,Timestamp")
	assert.Contains(t, rec.Body.String(), "Any trend?")
}

func TestIndexPage(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload a file")
}

func TestDatasetPage(t *testing.T) {
	server, _ := newTestServer(t, &llm.MockClient{})
	id := uploadCSV(t, server, "sales.csv", salesCSV)

	req := httptest.NewRequest(http.MethodGet, "/datasets/"+id.String(), nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales.csv")
	assert.Contains(t, rec.Body.String(), "revenue")
}
