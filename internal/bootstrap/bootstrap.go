package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ntimofeev/invoice-extractor/internal/config"
	"github.com/ntimofeev/invoice-extractor/internal/core/ports"
	"github.com/ntimofeev/invoice-extractor/internal/core/usecase"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/extractor/doctext"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/gateway/gemini"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/normalizer"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/queue/nats"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/repository/postgres"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/resilience"
	"github.com/ntimofeev/invoice-extractor/internal/infrastructure/storage/localfs"
	"github.com/ntimofeev/invoice-extractor/internal/observability/logging"
	"github.com/ntimofeev/invoice-extractor/internal/registry"
	"github.com/ntimofeev/invoice-extractor/internal/workspace"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	Uploads *workspace.UploadStore
	Data    *workspace.DataStore
	Gateway ports.FileGateway

	IngestUC   ports.FileIngestor
	ProcessUC  ports.DocumentProcessor
	ClassifyUC ports.DocumentClassifierService
	QueryUC    ports.DocumentReader

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	log := logging.NewJSONLogger(service, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	staging, err := localfs.New(cfg.StagingPath)
	if err != nil {
		return nil, fmt.Errorf("init staging store: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	gateway := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, executor)
	classifier := gemini.NewClassifier(gateway)
	textExtractor := doctext.New()
	norm := normalizer.New(cfg.MaxUploadBytes)

	data := workspace.NewDataStore()
	uploads := workspace.NewUploadStore(gateway, log)

	ingestUC := usecase.NewIngestDocumentUseCase(norm, staging, textExtractor, gateway, repo, queue, uploads, log)
	processUC := usecase.NewProcessDocumentUseCase(repo, gateway, classifier, data, log)
	classifyUC := usecase.NewClassifyDocumentUseCase(textExtractor, classifier)
	queryUC := usecase.NewGetDocumentUseCase(repo)

	log.Info("extraction pipeline ready",
		"model", gateway.ModelName(),
		"tasks", registry.Names())

	return &App{
		Config: cfg,
		Log:    log,

		Queue: queue,
		Repo:  repo,

		Uploads: uploads,
		Data:    data,
		Gateway: gateway,

		IngestUC:   ingestUC,
		ProcessUC:  processUC,
		ClassifyUC: classifyUC,
		QueryUC:    queryUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
