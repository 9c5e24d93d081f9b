// Package dataset orchestrates loading data sources into typed, profiled,
// in-memory datasets: store the raw upload, parse it, coerce column types,
// compute the statistical profile, and persist the metadata record.
package dataset

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"sync"

	"github.com/google/uuid"

	"datalens/adapters/sheets"
	"datalens/adapters/tabular"
	"datalens/domain/dataset"
	"datalens/internal"
	"datalens/internal/analysis"
	"datalens/internal/errors"
	"datalens/models"
	"datalens/ports"
)

// Entry pairs a loaded dataset with its computed profile
type Entry struct {
	Dataset *dataset.Dataset
	Summary *analysis.Summary
}

// Processor loads, profiles and registers datasets
type Processor struct {
	storage  *LocalFileStorage
	sheets   ports.SheetSource // nil when Sheets access is not configured
	repo     ports.DatasetRepository
	coercion dataset.CoercionConfig
	log      *internal.Logger

	mu       sync.RWMutex
	cache    map[uuid.UUID]*Entry
	activeID uuid.UUID
}

// NewProcessor creates a dataset processor
func NewProcessor(storage *LocalFileStorage, sheets ports.SheetSource, repo ports.DatasetRepository, log *internal.Logger) *Processor {
	return &Processor{
		storage:  storage,
		sheets:   sheets,
		repo:     repo,
		coercion: dataset.DefaultCoercionConfig(),
		log:      log,
		cache:    make(map[uuid.UUID]*Entry),
	}
}

// ProcessUpload stores an uploaded CSV/XLSX file and loads it as the
// active dataset.
func (p *Processor) ProcessUpload(ctx context.Context, file multipart.File, filename string) (*Entry, error) {
	if !tabular.SupportedExtension(filename) {
		return nil, errors.InvalidInput("unsupported file type, expected .csv or .xlsx")
	}

	path, err := p.storage.Store(ctx, file, filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store uploaded file")
	}
	p.log.Info("[Processor] Stored upload %s at %s", filename, path)

	header, rows, err := tabular.NewReader(path).ReadData()
	if err != nil {
		return nil, err
	}

	return p.register(ctx, filename, dataset.SourceUpload, filename, header, rows)
}

// ProcessSheet loads a Google Sheet as the active dataset
func (p *Processor) ProcessSheet(ctx context.Context, ref string) (*Entry, error) {
	if p.sheets == nil {
		return nil, errors.ConfigInvalid("Google Sheets access is not configured, set GOOGLE_CREDENTIALS_FILE")
	}

	header, rows, err := p.sheets.Read(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Sheet datasets are named by their spreadsheet ID; the full URL
	// stays in the filename column.
	name := ref
	if id, idErr := sheets.SpreadsheetID(ref); idErr == nil {
		name = id
	}
	return p.register(ctx, name, dataset.SourceSheet, ref, header, rows)
}

func (p *Processor) register(ctx context.Context, name string, source dataset.Source, filename string, header []string, rows [][]string) (*Entry, error) {
	ds, err := dataset.Build(name, source, header, rows, p.coercion)
	if err != nil {
		return nil, err
	}

	summary, err := analysis.Summarize(ctx, ds)
	if err != nil {
		return nil, errors.Wrap(err, "failed to profile dataset")
	}

	record := &models.DatasetRecord{
		ID:          ds.ID,
		Name:        ds.Name,
		Source:      string(ds.Source),
		Filename:    filename,
		RowCount:    ds.RowCount,
		ColumnCount: len(ds.Columns),
		Profile:     summaryToMap(summary),
		CreatedAt:   ds.LoadedAt,
	}
	if err := p.repo.Create(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to persist dataset metadata")
	}

	entry := &Entry{Dataset: ds, Summary: summary}
	p.mu.Lock()
	p.cache[ds.ID] = entry
	p.activeID = ds.ID
	p.mu.Unlock()

	p.log.Info("[Processor] Registered dataset %s (%d rows, %d columns)", ds.ID, ds.RowCount, len(ds.Columns))
	return entry, nil
}

// Get returns a loaded dataset by ID
func (p *Processor) Get(id uuid.UUID) (*Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.cache[id]
	return entry, ok
}

// Active returns the most recently loaded dataset, if any
func (p *Processor) Active() (*Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.cache[p.activeID]
	return entry, ok
}

func summaryToMap(summary *analysis.Summary) models.JSONBMap {
	raw, err := json.Marshal(summary)
	if err != nil {
		return models.JSONBMap{}
	}
	out := make(models.JSONBMap)
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.JSONBMap{}
	}
	return out
}
