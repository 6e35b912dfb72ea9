package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/research-links/pkg/config"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

// Services groups everything the router dispatches to.
type Services struct {
	Store       Pinger
	Links       ports.LinkService
	Collections ports.CollectionService
	Tags        ports.TagService
	Search      ports.SearchService
	Stats       ports.StatsService
	Export      ports.ExportService
	Ingest      ports.IngestService
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) http.Handler {
	h := NewHTTPHandler(svc.Links, svc.Store, logger)
	ch := NewCollectionHandler(svc.Collections, logger)
	th := NewTagHandler(svc.Tags, logger)
	rh := NewReportHandler(svc.Search, svc.Stats, svc.Export, svc.Ingest, logger)
	authHandler := NewAuthHandler(cfg, logger)
	mw := NewMiddleware(cfg, logger)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /{slug}", h.Redirect)
	mux.HandleFunc("GET /api/directory", h.Directory)
	mux.HandleFunc("GET /c/{id}", ch.GetPublicCollection)

	// Admin Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/auth", authHandler.Login)
	protectedMux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	protectedMux.HandleFunc("GET /api/links", h.List)
	protectedMux.HandleFunc("POST /api/links", h.Create)
	protectedMux.HandleFunc("PUT /api/links", h.Upsert)
	protectedMux.HandleFunc("PATCH /api/links", h.Update)
	protectedMux.HandleFunc("DELETE /api/links", h.Delete)

	protectedMux.HandleFunc("GET /api/tags", th.Get)
	protectedMux.HandleFunc("POST /api/tags", th.Add)
	protectedMux.HandleFunc("PATCH /api/tags", th.Remove)
	protectedMux.HandleFunc("PUT /api/tags", th.Rename)
	protectedMux.HandleFunc("DELETE /api/tags", th.Delete)

	protectedMux.HandleFunc("GET /api/collections", ch.ListCollections)
	protectedMux.HandleFunc("POST /api/collections", ch.CreateCollection)
	protectedMux.HandleFunc("PUT /api/collections", ch.UpdateCollection)
	protectedMux.HandleFunc("DELETE /api/collections", ch.DeleteCollection)

	protectedMux.HandleFunc("GET /api/search", rh.Search)
	protectedMux.HandleFunc("GET /api/stats", rh.Stats)
	protectedMux.HandleFunc("GET /api/export", rh.Export)
	protectedMux.HandleFunc("POST /api/ingest", rh.Ingest)

	mux.Handle("/api/", mw.AuthMiddleware(protectedMux))

	return mw.RequestLogger(mux)
}
