package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/ai"
	"datalens/internal"
	"datalens/internal/api"
	"datalens/internal/dataset"
	"datalens/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Deps holds everything the web server needs
type Deps struct {
	Processor     *dataset.Processor
	Analyst       *ai.Analyst
	Datasets      ports.DatasetRepository
	Answers       ports.AnswerRepository
	Hub           *api.SSEHub
	Logger        *internal.Logger
	SearchEnabled bool
	SheetsEnabled bool
	MaxUploadSize int64
}

// Server is the datalens web server
type Server struct {
	router *gin.Engine
	deps   Deps
}

// NewServer creates the web server with all routes configured
func NewServer(deps Deps) (*Server, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"pct": func(part, total int) float64 {
			if total == 0 {
				return 0
			}
			return float64(part) / float64(total) * 100
		},
		"fnum":     func(f float64) string { return fmt.Sprintf("%.4g", f) },
		"markdown": renderMarkdown,
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.Default()
	router.SetHTMLTemplate(templates)
	router.MaxMultipartMemory = 16 << 20

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to mount static files: %w", err)
	}
	router.StaticFS("/static", http.FS(staticFS))

	s := &Server{router: router, deps: deps}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	// Main pages
	s.router.GET("/", s.handleIndex)
	s.router.GET("/datasets/:id", s.handleDatasetPage)
	s.router.POST("/datasets/upload", s.handleUploadForm)
	s.router.POST("/datasets/sheet", s.handleSheetForm)
	s.router.POST("/datasets/:id/ask", s.handleAskForm)

	// JSON API
	apiGroup := s.router.Group("/api")
	{
		apiGroup.POST("/datasets/upload", s.handleUploadAPI)
		apiGroup.POST("/datasets/sheet", s.handleSheetAPI)
		apiGroup.GET("/datasets", s.handleListDatasets)
		apiGroup.GET("/datasets/:id", s.handleGetDataset)
		apiGroup.GET("/datasets/:id/summary", s.handleSummaryAPI)
		apiGroup.GET("/datasets/:id/histogram", s.handleHistogramAPI)
		apiGroup.GET("/datasets/:id/correlation", s.handleCorrelationAPI)
		apiGroup.POST("/datasets/:id/ask", s.handleAskAPI)
		apiGroup.GET("/datasets/:id/answers", s.handleAnswersAPI)
		apiGroup.GET("/datasets/:id/answers.csv", s.handleAnswersCSV)
		apiGroup.GET("/events/:id", s.deps.Hub.Handler())
	}
}

// Router exposes the underlying gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on the given port
func (s *Server) Run(port string) error {
	s.deps.Logger.Info("[Server] Listening on :%s", port)
	return s.router.Run(":" + port)
}
