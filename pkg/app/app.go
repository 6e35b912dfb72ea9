package app

import (
	"fmt"
	"net/http"

	"github.com/wadjakorntonsri/research-links/pkg/adapters/handler"
	"github.com/wadjakorntonsri/research-links/pkg/adapters/repository/redis"
	"github.com/wadjakorntonsri/research-links/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/research-links/pkg/adapters/sources/openreview"
	"github.com/wadjakorntonsri/research-links/pkg/adapters/sources/orcid"
	"github.com/wadjakorntonsri/research-links/pkg/config"
	"github.com/wadjakorntonsri/research-links/pkg/core/services"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

// App holds the store and every service built on it.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Repo   ports.LinkRepository

	Links       *services.LinkService
	Collections *services.CollectionService
	Tags        *services.TagService
	Search      *services.SearchService
	Stats       *services.StatsService
	Export      *services.ExportService
	Ingest      *services.IngestService
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	repo, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Repo:        repo,
		Links:       services.NewLinkService(repo, cfg.BaseURL, logger),
		Collections: services.NewCollectionService(repo),
		Tags:        services.NewTagService(repo),
		Search:      services.NewSearchService(repo),
		Stats:       services.NewStatsService(repo),
		Export:      services.NewExportService(repo, logger),
		Ingest:      services.NewIngestService(repo, Sources(cfg, logger), logger),
	}, nil
}

// OpenStore picks Redis for redis:// and rediss:// URLs and SQLite/libsql otherwise.
func OpenStore(cfg *config.Config, logger *zap.Logger) (ports.LinkRepository, error) {
	if cfg.UsesRedis() {
		repo, err := redis.NewRepository(cfg.StoreURL, logger)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return repo, nil
	}
	repo, err := sqlite.NewSQLiteRepository(cfg.StoreURL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return repo, nil
}

// Sources returns the work sources that have a profile id configured.
func Sources(cfg *config.Config, logger *zap.Logger) []ports.WorkSource {
	var sources []ports.WorkSource
	if cfg.ORCIDID != "" {
		sources = append(sources, orcid.NewClient(orcid.Config{
			ID:           cfg.ORCIDID,
			ClientID:     cfg.ORCIDClientID,
			ClientSecret: cfg.ORCIDClientSecret,
		}, nil))
	}
	if cfg.OpenReviewID != "" {
		sources = append(sources, openreview.NewClient(openreview.Config{
			ID:       cfg.OpenReviewID,
			Username: cfg.OpenReviewUsername,
			Password: cfg.OpenReviewPassword,
		}, nil, logger))
	}
	return sources
}

func (a *App) Services() handler.Services {
	return handler.Services{
		Store:       a.Repo,
		Links:       a.Links,
		Collections: a.Collections,
		Tags:        a.Tags,
		Search:      a.Search,
		Stats:       a.Stats,
		Export:      a.Export,
		Ingest:      a.Ingest,
	}
}

func (a *App) Router() http.Handler {
	return handler.NewRouter(a.Config, a.Services(), a.Logger)
}

func (a *App) Close() error {
	return a.Repo.Close()
}
