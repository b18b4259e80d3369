package handlers

import (
	"net/http"

	"github.com/AlonsoPV/baileApp-sub007/internal/config"
	"github.com/AlonsoPV/baileApp-sub007/internal/transport/http/dto"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

// CatalogHandler serves the zona and ritmo catalogs. They come from
// config, so the response is assembled once at construction.
type CatalogHandler struct {
	catalog dto.CatalogResponse
}

func NewCatalogHandler(community config.CommunityConfig) *CatalogHandler {
	catalog := dto.CatalogResponse{
		Zonas:  make([]dto.CatalogItem, 0, len(community.Zonas)),
		Ritmos: make([]dto.CatalogItem, 0, len(community.Ritmos)),
	}
	for _, zona := range community.Zonas {
		catalog.Zonas = append(catalog.Zonas, dto.CatalogItem{ID: zona.ID, Name: zona.Name})
	}
	for _, ritmo := range community.Ritmos {
		catalog.Ritmos = append(catalog.Ritmos, dto.CatalogItem{ID: ritmo.ID, Name: ritmo.Name})
	}
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	httperrors.Write(w, http.StatusOK, h.catalog)
}
