package handler

import (
	"context"
	"net/http"

	"tableside/internal/model"

	"github.com/rs/zerolog"
)

// Catalog is the read-only slice of the backend API the menu pages need.
type Catalog interface {
	Items(ctx context.Context) ([]model.MenuItem, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Tables(ctx context.Context) ([]model.Table, error)
}

// CatalogHandler proxies catalogue reads for the menu UI.
type CatalogHandler struct {
	catalog Catalog
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalogue handler.
func NewCatalogHandler(catalog Catalog, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

type menuResponse struct {
	Categories []model.Category `json:"categories"`
	Items      []model.MenuItem `json:"items"`
}

// Menu handles GET /api/menu requests.
func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, menuResponse{Categories: categories, Items: items})
}

// Tables handles GET /api/tables requests.
func (h *CatalogHandler) Tables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.catalog.Tables(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}
