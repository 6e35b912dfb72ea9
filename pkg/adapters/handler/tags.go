package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

type TagHandler struct {
	service ports.TagService
	logger  *zap.Logger
}

func NewTagHandler(service ports.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{service: service, logger: logger}
}

type tagsRequest struct {
	Slugs []string `json:"slugs"`
	Tags  []string `json:"tags"`
}

type renameTagRequest struct {
	OldTag string `json:"oldTag"`
	NewTag string `json:"newTag"`
}

type deleteTagRequest struct {
	Tag string `json:"tag"`
}

type tagResult struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

// Get serves ?action=stats and ?action=suggest&prefix=.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("action") {
	case "stats":
		stats, err := h.service.Stats(r.Context())
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	case "suggest":
		suggestions, err := h.service.Suggest(r.Context(), q.Get("prefix"))
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
	default:
		writeError(w, r, h.logger, badRequest("Invalid action. Use ?action=stats or ?action=suggest&prefix=..."))
	}
}

func (h *TagHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	n, err := h.service.Add(r.Context(), req.Slugs, req.Tags)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tagResult{
		Message: fmt.Sprintf("Added tags %s to %d entries", strings.Join(req.Tags, ", "), n),
		Updated: n,
	})
}

func (h *TagHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	n, err := h.service.Remove(r.Context(), req.Slugs, req.Tags)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tagResult{
		Message: fmt.Sprintf("Removed tags %s from %d entries", strings.Join(req.Tags, ", "), n),
		Updated: n,
	})
}

func (h *TagHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	n, err := h.service.Rename(r.Context(), req.OldTag, req.NewTag)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tagResult{
		Message: fmt.Sprintf("Renamed tag %q to %q in %d entries", req.OldTag, req.NewTag, n),
		Updated: n,
	})
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	n, err := h.service.DeleteTag(r.Context(), req.Tag)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tagResult{
		Message: fmt.Sprintf("Removed tag %q from %d entries", req.Tag, n),
		Updated: n,
	})
}
