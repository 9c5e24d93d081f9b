package ui

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"datalens/ai"
	"datalens/internal/dataset"
	"datalens/internal/errors"
)

// renderMarkdown converts an LLM answer to HTML for page display
func renderMarkdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	return template.HTML(markdown.ToHTML([]byte(src), p, renderer))
}

// statusForError maps application error codes to HTTP statuses
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeUnauthorized, errors.CodeExternalService:
		return http.StatusBadGateway
	case errors.CodeConfigInvalid:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a structured JSON error
func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func askRequest(entry *dataset.Entry, question string, useWebSearch bool) ai.AskRequest {
	return ai.AskRequest{Entry: entry, Question: question, UseWebSearch: useWebSearch}
}

func formatRange(low, high float64) string {
	return fmt.Sprintf("%.4g to %.4g", low, high)
}
