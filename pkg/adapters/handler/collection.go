package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

type CollectionHandler struct {
	service ports.CollectionService
	logger  *zap.Logger
}

func NewCollectionHandler(service ports.CollectionService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{service: service, logger: logger}
}

type updateCollectionRequest struct {
	ID string `json:"id"`
	domain.CollectionPatch
}

type collectionResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"collections": collections})
}

func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req domain.Collection
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	collection, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionResult{Success: true, ID: collection.ID})
}

func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	var req updateCollectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	collection, err := h.service.Update(r.Context(), req.ID, req.CollectionPatch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionResult{Success: true, ID: collection.ID})
}

func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionResult{Success: true})
}

// GetPublicCollection renders a collection with its projects resolved.
func (h *CollectionHandler) GetPublicCollection(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetPublic(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
