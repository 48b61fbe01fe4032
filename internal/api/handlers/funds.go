package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/advisorly/review-engine-backend/internal/repository"
)

// FundHandler handles portfolio-fund lookup HTTP requests.
type FundHandler struct {
	portfolioFundRepo *repository.PortfolioFundRepository
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(portfolioFundRepo *repository.PortfolioFundRepository) *FundHandler {
	return &FundHandler{portfolioFundRepo: portfolioFundRepo}
}

// PortfolioFund serves one holding's detail for the selection screens.
//
// Endpoint: GET /api/funds/{uuid}
func (h *FundHandler) PortfolioFund(w http.ResponseWriter, r *http.Request) {
	fund, err := h.portfolioFundRepo.GetPortfolioFund(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, fund)
}
