package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/core/services"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

// ReportHandler serves the read-mostly research endpoints: search, stats,
// export and ingestion.
type ReportHandler struct {
	search ports.SearchService
	stats  ports.StatsService
	export ports.ExportService
	ingest ports.IngestService
	logger *zap.Logger
	now    func() time.Time
}

func NewReportHandler(search ports.SearchService, stats ports.StatsService, export ports.ExportService, ingest ports.IngestService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		search: search,
		stats:  stats,
		export: export,
		ingest: ingest,
		logger: logger,
		now:    time.Now,
	}
}

func (h *ReportHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.search.Search(r.Context(), domain.SearchQuery{
		Query:  q.Get("q"),
		Tag:    q.Get("tag"),
		Source: q.Get("source"),
		Limit:  queryInt(q.Get("limit")),
		Offset: queryInt(q.Get("offset")),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Export streams the export in the requested format. CSV and YAML are sent
// as attachments.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exp, err := h.export.Export(r.Context(), q.Get("source"), q.Get("format"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteExport(&buf, exp); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	format := exp.Metadata.Format
	w.Header().Set("Content-Type", services.ContentType(format))
	if format != services.FormatJSON {
		w.Header().Set("Content-Disposition", `attachment; filename="`+services.ExportFilename(format, h.now())+`"`)
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type ingestResult struct {
	Count int           `json:"count"`
	Links []domain.Link `json:"links"`
}

// Ingest refreshes ?source=orcid|openreview|all (default all).
func (h *ReportHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var names []domain.Source
	switch source := r.URL.Query().Get("source"); source {
	case "", "all":
	case string(domain.SourceORCID), string(domain.SourceOpenReview):
		names = append(names, domain.Source(source))
	default:
		writeError(w, r, h.logger, badRequest("source must be orcid, openreview or all"))
		return
	}

	ingested, err := h.ingest.Ingest(r.Context(), names...)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sources := make(map[domain.Source]ingestResult, len(ingested))
	total := 0
	for src, links := range ingested {
		sources[src] = ingestResult{Count: len(links), Links: links}
		total += len(links)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   total,
	})
}
