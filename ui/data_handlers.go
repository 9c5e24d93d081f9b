package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datalens/internal/analysis"
	"datalens/internal/dataset"
	"datalens/internal/errors"
	"datalens/models"
)

func (s *Server) datasetID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput("invalid dataset id"))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) loadedEntry(c *gin.Context) (*dataset.Entry, bool) {
	id, ok := s.datasetID(c)
	if !ok {
		return nil, false
	}
	entry, ok := s.deps.Processor.Get(id)
	if !ok {
		respondError(c, errors.NotFound("loaded dataset"))
		return nil, false
	}
	return entry, true
}

func datasetResponse(entry *dataset.Entry) gin.H {
	ds := entry.Dataset
	return gin.H{
		"id":        ds.ID,
		"name":      ds.Name,
		"source":    ds.Source,
		"rows":      ds.RowCount,
		"columns":   ds.ColumnNames(),
		"numeric":   ds.NumericColumns(),
		"preview":   ds.PreviewRows(10),
		"loaded_at": ds.LoadedAt,
	}
}

// handleUploadAPI loads an uploaded file and returns the dataset shape
func (s *Server) handleUploadAPI(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, errors.InvalidInput("multipart field 'file' is required"))
		return
	}
	if s.deps.MaxUploadSize > 0 && fileHeader.Size > s.deps.MaxUploadSize {
		respondError(c, errors.InvalidInput("file exceeds the upload size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	entry, err := s.deps.Processor.ProcessUpload(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, datasetResponse(entry))
}

// handleSheetAPI loads a Google Sheet and returns the dataset shape
func (s *Server) handleSheetAPI(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("body must be JSON with a 'url' field"))
		return
	}

	entry, err := s.deps.Processor.ProcessSheet(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, datasetResponse(entry))
}

// handleListDatasets lists persisted dataset metadata
func (s *Server) handleListDatasets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := s.deps.Datasets.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": records, "count": len(records)})
}

// handleGetDataset returns shape and preview of a loaded dataset
func (s *Server) handleGetDataset(c *gin.Context) {
	entry, ok := s.loadedEntry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, datasetResponse(entry))
}

// handleSummaryAPI returns the statistical profile
func (s *Server) handleSummaryAPI(c *gin.Context) {
	entry, ok := s.loadedEntry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entry.Summary)
}

// handleHistogramAPI returns a binned distribution of a numeric column
func (s *Server) handleHistogramAPI(c *gin.Context) {
	entry, ok := s.loadedEntry(c)
	if !ok {
		return
	}

	column := c.Query("column")
	if column == "" {
		respondError(c, errors.InvalidInput("query parameter 'column' is required"))
		return
	}
	bins, _ := strconv.Atoi(c.DefaultQuery("bins", "0"))

	hist, err := analysis.HistogramFor(entry.Dataset, column, bins)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

// handleCorrelationAPI returns the Pearson correlation of two columns
func (s *Server) handleCorrelationAPI(c *gin.Context) {
	entry, ok := s.loadedEntry(c)
	if !ok {
		return
	}

	x, y := c.Query("x"), c.Query("y")
	if x == "" || y == "" {
		respondError(c, errors.InvalidInput("query parameters 'x' and 'y' are required"))
		return
	}

	result, err := analysis.Correlation(entry.Dataset, x, y)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleAskAPI answers a natural-language question about the dataset
func (s *Server) handleAskAPI(c *gin.Context) {
	entry, ok := s.loadedEntry(c)
	if !ok {
		return
	}

	var req struct {
		Question  string `json:"question" binding:"required"`
		WebSearch bool   `json:"web_search"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("body must be JSON with a 'question' field"))
		return
	}

	answer, err := s.deps.Analyst.Ask(c.Request.Context(), askRequest(entry, req.Question, req.WebSearch))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// handleAnswersAPI returns the Q&A history of a dataset
func (s *Server) handleAnswersAPI(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}

	answers, err := s.listRecentAnswers(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers, "count": len(answers)})
}

// handleAnswersCSV downloads the Q&A history as CSV
func (s *Server) handleAnswersCSV(c *gin.Context) {
	id, ok := s.datasetID(c)
	if !ok {
		return
	}

	answers, err := s.listRecentAnswers(c, id)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := models.AnswersCSV(answers)
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to render CSV"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="analysis_results.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
