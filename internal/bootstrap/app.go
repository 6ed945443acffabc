package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"vela-dashboard-backend/internal/analysis"
	"vela-dashboard-backend/internal/configopt"
	"vela-dashboard-backend/internal/docs"
	"vela-dashboard-backend/internal/llm"
	"vela-dashboard-backend/internal/llm/groq"
	"vela-dashboard-backend/internal/llm/openai"
	"vela-dashboard-backend/internal/pipelines"
	"vela-dashboard-backend/internal/shared/config"
	"vela-dashboard-backend/internal/shared/server"
	"vela-dashboard-backend/internal/shared/storage/db"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	PipelinesRepo    pipelines.Repo
	DocsFetcher      *docs.Fetcher
	AnalysisService  *analysis.Service
	PipelinesService *pipelines.Service
	ConfigService    *configopt.Service

	AnalysisHandler  *analysis.Handler
	PipelinesHandler *pipelines.Handler
	ConfigHandler    *configopt.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		AnalysisHandler:  app.AnalysisHandler,
		PipelinesHandler: app.PipelinesHandler,
		ConfigHandler:    app.ConfigHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildServices(app *App) error {
	cfg := app.Config

	var pipelinesRepo pipelines.Repo
	if app.DB != nil {
		pipelinesRepo = &pipelines.PGRepo{DB: app.DB}
	} else {
		pipelinesRepo = pipelines.NewMemoryRepo()
	}

	fetcher := docs.NewFetcher(cfg.VelaDocsURLs, cfg.DocsTimeout)

	// A missing Groq credential is a valid configuration: analysis degrades
	// to the local fallback rather than failing at startup.
	var analysisLLM llm.Client
	if strings.TrimSpace(cfg.GroqAPIKey) != "" {
		groqOpts := groq.DefaultOptions()
		groqOpts.Timeout = cfg.LLMTimeout
		client, err := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel, groqOpts)
		if err != nil {
			return err
		}
		analysisLLM = client
	} else {
		log.Printf("bootstrap: GROQ_API_KEY empty; failure analysis uses local fallback")
	}

	var configLLM llm.Client
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		openaiOpts := openai.DefaultOptions()
		openaiOpts.Timeout = cfg.LLMTimeout
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, openaiOpts)
		if err != nil {
			return err
		}
		configLLM = client
	} else {
		log.Printf("bootstrap: OPENAI_API_KEY empty; config analysis disabled")
	}

	analysisSvc := &analysis.Service{
		Docs:    fetcher,
		LLM:     analysisLLM,
		Timeout: cfg.LLMTimeout,
	}
	pipelinesSvc := &pipelines.Service{Repo: pipelinesRepo}
	configSvc := &configopt.Service{LLM: configLLM}

	app.PipelinesRepo = pipelinesRepo
	app.DocsFetcher = fetcher
	app.AnalysisService = analysisSvc
	app.PipelinesService = pipelinesSvc
	app.ConfigService = configSvc
	app.AnalysisHandler = analysis.NewHandler(analysisSvc)
	app.PipelinesHandler = pipelines.NewHandler(pipelinesSvc, analysisSvc)
	app.ConfigHandler = configopt.NewHandler(configSvc)

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
