package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"datalens/adapters/llm"
	"datalens/adapters/postgres"
	"datalens/adapters/search"
	"datalens/adapters/sheets"
	"datalens/ai"
	"datalens/internal"
	"datalens/internal/api"
	"datalens/internal/config"
	"datalens/internal/dataset"
	"datalens/internal/errors"
	"datalens/internal/migration"
	"datalens/ports"
	"datalens/ui"
)

// initDatabase connects to PostgreSQL and applies the schema
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()
	gin.SetMode(cfg.Server.GinMode)

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	storage := dataset.NewLocalFileStorage(&dataset.StorageConfig{
		BasePath:    cfg.Storage.UploadDir,
		MaxFileSize: cfg.Storage.MaxFileSize,
		ChunkSize:   1024 * 1024,
	})

	var sheetSource ports.SheetSource
	if cfg.SheetsEnabled() {
		client, err := sheets.NewClient(context.Background(), cfg.Sheets.CredentialsFile)
		if err != nil {
			log.Fatalf("Failed to initialize Google Sheets client: %v", err)
		}
		sheetSource = client
		logger.Info("[Main] Google Sheets loading enabled")
	} else {
		logger.Info("[Main] GOOGLE_CREDENTIALS_FILE not set, Google Sheets loading disabled")
	}

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:      cfg.AI.GroqKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	var searcher ports.WebSearcher
	if cfg.SearchEnabled() {
		client, err := search.NewClient(search.Config{
			APIKey:  cfg.Search.SerpAPIKey,
			BaseURL: cfg.Search.BaseURL,
			Timeout: cfg.Search.Timeout,
		})
		if err != nil {
			log.Fatalf("Failed to initialize search client: %v", err)
		}
		searcher = client
		logger.Info("[Main] Web search enabled")
	} else {
		logger.Info("[Main] SERPAPI_KEY not set, web search disabled")
	}

	datasetRepo := postgres.NewDatasetRepository(db)
	answerRepo := postgres.NewAnswerRepository(db)

	processor := dataset.NewProcessor(storage, sheetSource, datasetRepo, logger)
	hub := api.NewSSEHub()
	analyst := ai.NewAnalyst(llmClient, searcher, answerRepo, hub, cfg.AI.Model, cfg.Search.ResultCount, logger)

	server, err := ui.NewServer(ui.Deps{
		Processor:     processor,
		Analyst:       analyst,
		Datasets:      datasetRepo,
		Answers:       answerRepo,
		Hub:           hub,
		Logger:        logger,
		SearchEnabled: cfg.SearchEnabled(),
		SheetsEnabled: cfg.SheetsEnabled(),
		MaxUploadSize: cfg.Storage.MaxFileSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize web server: %v", err)
	}

	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
