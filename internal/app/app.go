// Package app assembles the estimator's services from configuration. Both the
// HTTP daemon and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/blueprint-estimator/internal/async"
	"github.com/joseph-ayodele/blueprint-estimator/internal/blob"
	"github.com/joseph-ayodele/blueprint-estimator/internal/blueprint"
	"github.com/joseph-ayodele/blueprint-estimator/internal/catalog"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract/mupdf"
	"github.com/joseph-ayodele/blueprint-estimator/internal/estimate"
	"github.com/joseph-ayodele/blueprint-estimator/internal/export"
	"github.com/joseph-ayodele/blueprint-estimator/internal/permit"
	"github.com/joseph-ayodele/blueprint-estimator/internal/repository"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/pricebook"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/project"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/template"
	"github.com/joseph-ayodele/blueprint-estimator/internal/timeline"
)

// App holds the wired services and the resources they share.
type App struct {
	Config *common.Config
	Logger *slog.Logger
	DB     *repository.DB

	Files     blob.Store
	Catalog   repository.CatalogRepository
	Extractor docextract.Extractor

	Projects  *project.Service
	Templates *template.Service
	PriceBook *pricebook.Service
	Processor *blueprint.Processor
	Engine    *estimate.Engine
	Estimates *estimate.Service
	Permits   *permit.Service
	Timeline  *timeline.Predictor
	Export    *export.Service
	Queue     *async.ProcessorQueue

	cache *catalog.RedisCache
}

type settings struct {
	withQueue bool
	extractor docextract.Extractor
	files     blob.Store
}

// Option adjusts how New wires the application.
type Option func(*settings)

// WithoutQueue skips starting the async extraction workers.
func WithoutQueue() Option {
	return func(s *settings) { s.withQueue = false }
}

// WithExtractor replaces the configured PDF extractor.
func WithExtractor(e docextract.Extractor) Option {
	return func(s *settings) { s.extractor = e }
}

// WithFiles replaces the configured blob store.
func WithFiles(f blob.Store) Option {
	return func(s *settings) { s.files = f }
}

// New opens the database, applies migrations and wires every service. The
// caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st := settings{withQueue: true}
	for _, o := range opts {
		o(&st)
	}

	db, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &App{Config: cfg, Logger: logger, DB: db}

	if err := repository.Migrate(ctx, db); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := a.wire(ctx, st); err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, st settings) error {
	cfg, logger := a.Config, a.Logger

	store := repository.NewStore(a.DB, logger)
	projects := repository.NewProjectRepository(store, logger)
	blueprints := repository.NewBlueprintRepository(store, logger)
	estimates := repository.NewEstimateRepository(store, logger)
	companies := repository.NewCompanyRepository(store, logger)
	templates := repository.NewTemplateRepository(store, logger)
	history := repository.NewHistoryRepository(store, logger)

	a.Catalog = repository.NewCatalogRepository(a.DB, logger)
	if cfg.Cache.Addr != "" {
		cache, err := catalog.NewRedisCache(ctx, catalog.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
		})
		if err != nil {
			// the catalog still works uncached
			logger.Warn("catalog cache unavailable; reading catalog from the database", "addr", cfg.Cache.Addr, "error", err)
		} else {
			a.cache = cache
			a.Catalog = catalog.NewCached(a.Catalog, cache, cfg.Cache.TTL, logger)
			logger.Info("catalog cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
		}
	}

	a.Files = st.files
	if a.Files == nil {
		files, err := openBlobStore(ctx, cfg.Blob, logger)
		if err != nil {
			return err
		}
		a.Files = files
	}

	a.Extractor = st.extractor
	if a.Extractor == nil {
		a.Extractor = docextract.WithTimeout(newExtractor(cfg.Extractor, logger), cfg.Extractor.Timeout)
	}

	a.Projects = project.NewService(projects, blueprints, companies, logger)
	a.Templates = template.NewService(templates, logger)
	a.PriceBook = pricebook.NewService(a.Catalog, logger)
	a.Processor = blueprint.NewProcessor(projects, blueprints, templates, a.Files, a.Extractor, logger,
		blueprint.WithMaxPages(cfg.Extractor.MaxPages))
	a.Engine = estimate.NewEngine(blueprints, companies, a.Catalog, estimates, logger)
	a.Estimates = estimate.NewService(estimates, companies, logger)
	a.Permits = permit.NewService(blueprints, logger)
	a.Timeline = timeline.NewPredictor(estimates, blueprints, history, logger)
	a.Export = export.NewService(estimates, logger)

	if st.withQueue {
		a.Queue = async.NewProcessorQueue(a.Processor, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		)
	}
	return nil
}

func openBlobStore(ctx context.Context, cfg common.BlobConfig, logger *slog.Logger) (blob.Store, error) {
	switch cfg.Driver {
	case "s3":
		s, err := blob.NewS3StoreFromEnv(ctx, cfg.Bucket, cfg.Region, logger)
		if err != nil {
			return nil, fmt.Errorf("open s3 blob store: %w", err)
		}
		return s, nil
	default:
		s, err := blob.NewLocalStore(cfg.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("open local blob store: %w", err)
		}
		return s, nil
	}
}

func newExtractor(cfg common.ExtractorConfig, logger *slog.Logger) docextract.Extractor {
	if cfg.Engine == "mupdf" {
		logger.Info("using mupdf extractor")
		return mupdf.New(logger)
	}
	logger.Info("using poppler extractor", "bin", cfg.PdftotextBin)
	return docextract.NewPopplerExtractor(docextract.PopplerConfig{
		Pdftotext: cfg.PdftotextBin,
		TempDir:   cfg.ArtifactCacheDir,
	}, nil, logger)
}

// Ready pings the database.
func (a *App) Ready(ctx context.Context) error {
	return repository.HealthCheck(ctx, a.DB, a.Config.Database.DialTimeout, a.Logger)
}

// Close drains the queue and releases the cache and database. ctx bounds the
// queue drain.
func (a *App) Close(ctx context.Context) {
	if a.Queue != nil {
		a.Queue.Shutdown(ctx)
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Logger.Warn("catalog cache close failed", "error", err)
		}
	}
	a.DB.Close(a.Logger)
}
