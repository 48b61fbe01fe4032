package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/repository"
	"github.com/advisorly/review-engine-backend/internal/service"
)

// ProductHandler handles product listing HTTP requests.
type ProductHandler struct {
	productRepo      *repository.ProductRepository
	catalogueService *service.CatalogueService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productRepo *repository.ProductRepository, catalogueService *service.CatalogueService) *ProductHandler {
	return &ProductHandler{
		productRepo:      productRepo,
		catalogueService: catalogueService,
	}
}

// Products lists products, optionally filtered by client group or an
// explicit id list. Unfiltered requests are served from the prefetched
// catalogue when available.
//
// Endpoint: GET /api/products?client_group_id=...&ids=a,b,c
func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	var (
		products []model.Product
		err      error
	)

	switch {
	case r.URL.Query().Get("client_group_id") != "":
		products, err = h.productRepo.GetProductsByClientGroup(r.Context(), r.URL.Query().Get("client_group_id"))
	case r.URL.Query().Get("ids") != "":
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		products, err = h.productRepo.GetProductsByIDs(r.Context(), ids)
	default:
		if cached, ok := h.catalogueService.Catalogue(); ok {
			products = cached
		} else {
			products, err = h.productRepo.GetAllProducts(r.Context())
		}
	}

	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// Product serves one product's detail for the selection screens.
//
// Endpoint: GET /api/products/{uuid}
func (h *ProductHandler) Product(w http.ResponseWriter, r *http.Request) {
	product, err := h.productRepo.GetProduct(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}
