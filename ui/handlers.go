package ui

import (
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datalens/internal/analysis"
	"datalens/internal/errors"
	"datalens/models"
)

// answerView is one rendered history entry
type answerView struct {
	Question      string
	AnswerHTML    template.HTML
	Model         string
	UsedWebSearch bool
	CreatedAt     time.Time
}

// histBar is one server-rendered histogram bucket
type histBar struct {
	Label string
	Count int
	Width float64
}

// handleIndex renders the landing page with data source forms and the
// dataset list.
func (s *Server) handleIndex(c *gin.Context) {
	records, err := s.deps.Datasets.List(c.Request.Context(), 20)
	if err != nil {
		s.deps.Logger.Warn("[Server] Failed to list datasets: %v", err)
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Datasets":      records,
		"SheetsEnabled": s.deps.SheetsEnabled,
		"Error":         c.Query("error"),
	})
}

// handleDatasetPage renders preview, profile, histogram and Q&A history
func (s *Server) handleDatasetPage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "index.html", gin.H{"Error": "unknown dataset"})
		return
	}

	record, err := s.deps.Datasets.GetByID(c.Request.Context(), id)
	if err != nil {
		s.redirectWithError(c, "/", "dataset not found")
		return
	}

	view := gin.H{
		"Record":        record,
		"HasData":       false,
		"SearchEnabled": s.deps.SearchEnabled,
		"Error":         c.Query("error"),
	}

	answers, err := s.deps.Answers.ListByDataset(c.Request.Context(), id, 100)
	if err != nil {
		s.deps.Logger.Warn("[Server] Failed to list answers: %v", err)
	}
	views := make([]answerView, len(answers))
	for i, a := range answers {
		views[i] = answerView{
			Question:      a.Question,
			AnswerHTML:    renderMarkdown(a.Answer),
			Model:         a.Model,
			UsedWebSearch: a.UsedWebSearch,
			CreatedAt:     a.CreatedAt,
		}
	}
	view["Answers"] = views

	if entry, ok := s.deps.Processor.Get(id); ok {
		ds := entry.Dataset
		view["HasData"] = true
		view["Columns"] = ds.ColumnNames()
		view["NumericColumns"] = ds.NumericColumns()
		view["Preview"] = ds.PreviewRows(10)
		view["Summary"] = entry.Summary

		column := c.Query("column")
		if column == "" {
			if numeric := ds.NumericColumns(); len(numeric) > 0 {
				column = numeric[0]
			}
		}
		if column != "" {
			if hist, histErr := analysis.HistogramFor(ds, column, 0); histErr == nil {
				view["SelectedColumn"] = column
				view["Histogram"] = histogramBars(hist)
			} else {
				s.deps.Logger.Warn("[Server] Histogram for %q failed: %v", column, histErr)
			}
		}
	}

	c.HTML(http.StatusOK, "dataset.html", view)
}

// handleUploadForm loads an uploaded CSV/XLSX file and redirects to its page
func (s *Server) handleUploadForm(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.redirectWithError(c, "/", "choose a CSV or XLSX file to upload")
		return
	}
	if s.deps.MaxUploadSize > 0 && fileHeader.Size > s.deps.MaxUploadSize {
		s.redirectWithError(c, "/", "file exceeds the upload size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.redirectWithError(c, "/", "failed to read uploaded file")
		return
	}
	defer file.Close()

	entry, err := s.deps.Processor.ProcessUpload(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		s.redirectWithError(c, "/", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/datasets/"+entry.Dataset.ID.String())
}

// handleSheetForm loads a Google Sheet and redirects to its page
func (s *Server) handleSheetForm(c *gin.Context) {
	ref := c.PostForm("sheet_url")
	entry, err := s.deps.Processor.ProcessSheet(c.Request.Context(), ref)
	if err != nil {
		s.redirectWithError(c, "/", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/datasets/"+entry.Dataset.ID.String())
}

// handleAskForm answers a question from the dataset page form
func (s *Server) handleAskForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.redirectWithError(c, "/", "unknown dataset")
		return
	}
	page := "/datasets/" + id.String()

	entry, ok := s.deps.Processor.Get(id)
	if !ok {
		s.redirectWithError(c, page, "dataset is not loaded in this session, upload it again")
		return
	}

	_, err = s.deps.Analyst.Ask(c.Request.Context(), askRequest(entry, c.PostForm("question"), c.PostForm("web_search") == "on"))
	if err != nil {
		s.redirectWithError(c, page, err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, page)
}

func (s *Server) redirectWithError(c *gin.Context, page, message string) {
	c.Redirect(http.StatusSeeOther, page+"?error="+url.QueryEscape(message))
}

func histogramBars(hist *analysis.Histogram) []histBar {
	maxCount := 0
	for _, bin := range hist.Bins {
		if bin.Count > maxCount {
			maxCount = bin.Count
		}
	}
	bars := make([]histBar, len(hist.Bins))
	for i, bin := range hist.Bins {
		width := 0.0
		if maxCount > 0 {
			width = float64(bin.Count) / float64(maxCount) * 100
		}
		bars[i] = histBar{
			Label: formatRange(bin.Low, bin.High),
			Count: bin.Count,
			Width: width,
		}
	}
	return bars
}

// listRecentAnswers is shared by the CSV export and the JSON history
func (s *Server) listRecentAnswers(c *gin.Context, id uuid.UUID) ([]*models.Answer, error) {
	answers, err := s.deps.Answers.ListByDataset(c.Request.Context(), id, 500)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load answer history")
	}
	return answers, nil
}
