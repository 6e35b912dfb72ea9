package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	service ports.LinkService
	store   Pinger
	logger  *zap.Logger
}

func NewHTTPHandler(service ports.LinkService, store Pinger, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, store: store, logger: logger}
}

type createLinksRequest struct {
	Links []domain.LinkInput `json:"links"`
}

type updateLinksRequest struct {
	Slugs   []string              `json:"slugs"`
	Updates *domain.MetadataPatch `json:"updates"`
}

type linkResponse struct {
	Slug     string           `json:"slug"`
	Target   *string          `json:"target"`
	Clicks   int64            `json:"clicks"`
	Metadata *domain.Metadata `json:"metadata"`
}

func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("store ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// Redirect sends a permanent redirect to the slug's target and counts the click.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Robots-Tag", "noindex")

	target, err := h.service.Resolve(r.Context(), r.PathValue("slug"))
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("resolve failed", zap.String("slug", r.PathValue("slug")), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func (h *HTTPHandler) Directory(w http.ResponseWriter, r *http.Request) {
	entries, collections, err := h.service.Directory(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"links":       entries,
		"total":       len(entries),
		"collections": collections,
	})
}

// List returns one link for ?slug=, otherwise a filtered page.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if slug := q.Get("slug"); slug != "" {
		link, err := h.service.Get(r.Context(), slug)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		resp := linkResponse{Slug: domain.NormalizeSlug(slug)}
		if link != nil {
			resp.Target = &link.Target
			resp.Clicks = link.Clicks
			resp.Metadata = &link.Metadata
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	links, page, err := h.service.List(r.Context(), domain.LinkFilter{
		Tag:    q.Get("tag"),
		Source: q.Get("source"),
		Search: q.Get("search"),
		Limit:  queryInt(q.Get("limit")),
		Offset: queryInt(q.Get("offset")),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"links":      links,
		"pagination": page,
	})
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinksRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Links == nil {
		writeError(w, r, h.logger, badRequest("links array required"))
		return
	}

	results := h.service.Create(r.Context(), req.Links)
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *HTTPHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req domain.LinkInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateLinksRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Slugs == nil || req.Updates == nil {
		writeError(w, r, h.logger, badRequest("slugs array and updates object required"))
		return
	}

	results, err := h.service.BulkUpdate(r.Context(), req.Slugs, *req.Updates)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Delete removes ?slug= or every entry of the comma separated ?slugs=.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if slug := q.Get("slug"); slug != "" {
		res, err := h.service.Delete(r.Context(), slug)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"deleted":     []string{res.Key},
			"existed":     res.Existed,
			"keysDeleted": res.KeysDeleted,
		})
		return
	}

	if slugs := q.Get("slugs"); slugs != "" {
		results, err := h.service.BulkDelete(r.Context(), strings.Split(slugs, ","))
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		deleted := make([]string, 0, len(results))
		for _, res := range results {
			deleted = append(deleted, res.Key)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"deleted": deleted,
			"results": results,
		})
		return
	}

	writeError(w, r, h.logger, badRequest("slug or slugs parameter required"))
}

// queryInt reads a non-negative integer parameter; anything else is 0.
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
