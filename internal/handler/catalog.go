package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sql-manager/internal/service"
)

// CatalogHandler serves categories and tags. Both share one request shape
// and the same open delete policy: any signed-in user may remove an entry.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type createNameRequest struct {
	Name string `json:"name"`
}

// HandleListCategories serves GET /api/categories. The default category is
// always first.
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleCreateCategory serves POST /api/categories {"name":"..."}
func (h *CatalogHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var req createNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req.Name, user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// HandleDeleteCategory serves DELETE /api/categories/{id}
func (h *CatalogHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), r.PathValue("id"), user); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "category deleted"})
}

// HandleListTags serves GET /api/tags
func (h *CatalogHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleCreateTag serves POST /api/tags {"name":"..."}
func (h *CatalogHandler) HandleCreateTag(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var req createNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	tag, err := h.catalog.CreateTag(r.Context(), req.Name, user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// HandleDeleteTag serves DELETE /api/tags/{id}
func (h *CatalogHandler) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteTag(r.Context(), r.PathValue("id"), user); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "tag deleted"})
}
