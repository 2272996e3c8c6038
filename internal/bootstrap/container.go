package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/handlers"
	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/routes"
	"alfredoptarigan/resume-ranker/internal/services"
)

// Container holds the services shared by the HTTP API and the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	LLM       llm.LLMService
	Worker    services.Worker
	Storage   services.StorageService
	Loader    services.DocumentLoader
	Extractor services.CriteriaExtractor
	Scorer    services.ResumeScorer
	Suggester services.ResumeSuggester
	Reports   services.ReportBuilder
	Recorder  services.RunRecorder

	// Qdrant is nil when no rubric knowledge base is configured.
	Qdrant services.QdrantService

	runHistory bool
	closers    []func() error
}

// New wires every service from cfg and starts the worker pool. Close
// releases what New acquired.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	llmService, err := llm.NewService(ctx, cfg.LLM, log)
	if err != nil {
		return nil, err
	}
	c.LLM = llmService
	log.Info("✅ Model provider initialized", zap.String("provider", llmService.Name()))

	c.Storage = services.NewStorageService(cfg.Storage.UploadPath)
	if err := c.Storage.EnsureUploadDir(); err != nil {
		return nil, err
	}
	c.Loader = services.NewDocumentLoader(log)

	rubric := services.NewNoopRubricRetriever()
	if cfg.Qdrant.Enabled() {
		qdrantService, err := services.NewQdrantService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			cfg.Qdrant.VectorSize,
			log,
		)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, qdrantService.Close)

		if err := qdrantService.InitCollection(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize rubric collection: %w", err)
		}
		c.Qdrant = qdrantService
		rubric = services.NewRubricRetriever(c.LLM, qdrantService, cfg.Qdrant.TopK, log)
		log.Info("✅ Rubric knowledge base initialized", zap.String("collection", cfg.Qdrant.Collection))
	}

	c.Recorder = services.NewNoopRunRecorder()
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			c.Close()
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		c.closers = append(c.closers, sqlDB.Close)

		c.Recorder = services.NewRunRecorder(
			repositories.NewRunRepository(db),
			repositories.NewCandidateResultRepository(db),
			log,
		)
		c.runHistory = true
		log.Info("✅ Run history enabled")
	}

	c.Worker = services.NewWorker(cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)
	c.Worker.Start(context.Background())
	c.closers = append(c.closers, func() error {
		c.Worker.Stop()
		return nil
	})

	temperature := cfg.LLM.Temperature
	c.Extractor = services.NewCriteriaExtractor(c.LLM, temperature, log)
	c.Scorer = services.NewResumeScorer(c.LLM, c.Worker, rubric, temperature, log)
	c.Suggester = services.NewResumeSuggester(c.LLM, c.Worker, temperature, log)
	c.Reports = services.NewReportBuilder()

	log.Info("✅ Services initialized successfully")
	return c, nil
}

// Handlers builds the HTTP handlers on top of the container's services.
func (c *Container) Handlers() routes.Handlers {
	cfg := c.Config
	intake := handlers.NewDocumentIntake(c.Storage, c.Loader, cfg.Storage.MaxFileSize, cfg.Storage.MaxFiles, c.Logger)

	h := routes.Handlers{
		Extract: handlers.NewExtractHandler(intake, c.Extractor, c.Recorder, cfg.Server.RequestTimeout, c.Logger),
		Score:   handlers.NewScoreHandler(intake, c.Scorer, c.Reports, c.Recorder, cfg.Server.RequestTimeout, c.Logger),
		Suggest: handlers.NewSuggestHandler(intake, c.Suggester, c.Recorder, cfg.Server.RequestTimeout, c.Logger),
	}
	if c.runHistory {
		h.Run = handlers.NewRunHandler(c.Recorder)
	}
	return h
}

// Close stops the worker pool and closes connections, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("⚠️ Failed to release resource", zap.Error(err))
		}
	}
	c.closers = nil
}
