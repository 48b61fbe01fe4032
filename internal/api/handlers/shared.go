package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/advisorly/review-engine-backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON")
		}
	}
}

// respondServiceError maps engine errors onto HTTP statuses. Selection
// problems and date-selection rejections are user errors; a consolidated
// missing-valuation error carries its fund list as details.
func respondServiceError(w http.ResponseWriter, err error) {
	var missingErr *apperrors.MissingValuationError
	if errors.As(err, &missingErr) {
		missing := make([]string, len(missingErr.Missing))
		for i, m := range missingErr.Missing {
			missing[i] = m.String()
		}
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":             "missing valuations",
			"missingValuations": missing,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNoProductsSelected),
		errors.Is(err, apperrors.ErrDuplicateProductSelection),
		errors.Is(err, apperrors.ErrDateCapExceeded),
		errors.Is(err, apperrors.ErrDatePastCutoff),
		errors.Is(err, apperrors.ErrDateNotAvailable):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrClientGroupNotFound),
		errors.Is(err, apperrors.ErrProductNotFound),
		errors.Is(err, apperrors.ErrPortfolioFundNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error": err.Error(),
		})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "internal error",
			"detail": err.Error(),
		})
	}
}

// decodeBody decodes a JSON request body into dst, responding with 400 on
// malformed input. Returns false when the response has been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return false
	}
	return true
}
