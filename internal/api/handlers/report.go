package handlers

import (
	"net/http"
	"time"

	"github.com/advisorly/review-engine-backend/internal/api/request"
	"github.com/advisorly/review-engine-backend/internal/model"
	"github.com/advisorly/review-engine-backend/internal/service"
	"github.com/advisorly/review-engine-backend/internal/validation"
)

// ReportHandler handles the report engine endpoints: selection resolution,
// historical date curation, and report generation.
type ReportHandler struct {
	selectionService *service.SelectionService
	dateService      *service.DateSelectionService
	reportService    *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	selectionService *service.SelectionService,
	dateService *service.DateSelectionService,
	reportService *service.ReportService,
) *ReportHandler {
	return &ReportHandler{
		selectionService: selectionService,
		dateService:      dateService,
		reportService:    reportService,
	}
}

// ProvenanceResponse mirrors model.Provenance for API responses.
type ProvenanceResponse struct {
	Direct       bool     `json:"direct"`
	ClientGroups []string `json:"clientGroups,omitempty"`
}

// ResolveSelectionResponse is the outcome of a selection resolution.
type ResolveSelectionResponse struct {
	RelatedProducts []model.Product               `json:"relatedProducts"`
	Provenance      map[string]ProvenanceResponse `json:"provenance"`
	ExcludedIDs     []string                      `json:"excludedIds"`
}

// ResolveSelection resolves client groups and product picks into the
// deduplicated related-product set.
//
// Endpoint: POST /api/report/selection
func (h *ReportHandler) ResolveSelection(w http.ResponseWriter, r *http.Request) {
	var req request.ResolveSelectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resolved, err := h.selectionService.Resolve(r.Context(), req.ClientGroupIDs, req.ProductIDs, req.ExcludedProductIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	provenance := make(map[string]ProvenanceResponse, len(resolved.Provenance))
	for id, p := range resolved.Provenance {
		provenance[id] = ProvenanceResponse{Direct: p.Direct, ClientGroups: p.ClientGroups}
	}

	excluded := make([]string, 0, len(resolved.Excluded))
	for id := range resolved.Excluded {
		excluded = append(excluded, id)
	}

	respondJSON(w, http.StatusOK, ResolveSelectionResponse{
		RelatedProducts: resolved.RelatedProducts,
		Provenance:      provenance,
		ExcludedIDs:     excluded,
	})
}

// DiscoverDates unions selectable historical dates across products.
//
// Endpoint: POST /api/report/dates/discover
func (h *ReportHandler) DiscoverDates(w http.ResponseWriter, r *http.Request) {
	var req request.DiscoverDatesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validation.ValidateUUIDs(req.ProductIDs); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	dates, err := h.dateService.DiscoverDates(r.Context(), req.ProductIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dates)
}

// SelectDates adds dates to one product's selection.
//
// Endpoint: POST /api/report/dates/select
func (h *ReportHandler) SelectDates(w http.ResponseWriter, r *http.Request) {
	req, dates, ok := h.decodeDates(w, r)
	if !ok {
		return
	}

	if err := h.dateService.Select(req.ProductID, dates); err != nil {
		respondServiceError(w, err)
		return
	}

	h.respondSelections(w)
}

// DeselectDates removes dates from one product's selection.
//
// Endpoint: POST /api/report/dates/deselect
func (h *ReportHandler) DeselectDates(w http.ResponseWriter, r *http.Request) {
	req, dates, ok := h.decodeDates(w, r)
	if !ok {
		return
	}

	h.dateService.Deselect(req.ProductID, dates)
	h.respondSelections(w)
}

// SelectMostRecent replaces selections with the N most recent global dates.
//
// Endpoint: POST /api/report/dates/most-recent
func (h *ReportHandler) SelectMostRecent(w http.ResponseWriter, r *http.Request) {
	var req request.MostRecentDatesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Count < 1 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "count must be at least 1"})
		return
	}

	h.dateService.SelectMostRecent(req.Count)
	h.respondSelections(w)
}

// SetCutoff sets or clears the end-of-period cut-off date.
//
// Endpoint: POST /api/report/dates/cutoff
func (h *ReportHandler) SetCutoff(w http.ResponseWriter, r *http.Request) {
	var req request.CutoffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var cutoff *time.Time
	if req.Date != nil {
		parsed, err := validation.ParseDate(*req.Date)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		cutoff = &parsed
	}

	h.dateService.SetCutoff(cutoff)
	respondJSON(w, http.StatusOK, h.dateService.AvailableDates())
}

// Generate runs one report generation and returns the payload.
//
// Endpoint: POST /api/report/generate
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	serviceReq := service.ReportRequest{
		ClientGroupIDs:     req.ClientGroupIDs,
		ProductIDs:         req.ProductIDs,
		ExcludedProductIDs: req.ExcludedProductIDs,
		OwnerSelection:     req.OwnerSelection,
	}

	if req.Cutoff != nil {
		cutoff, err := validation.ParseDate(*req.Cutoff)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		serviceReq.Cutoff = &cutoff
	}

	payload, err := h.reportService.Generate(r.Context(), serviceReq)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, payload)
}

func (h *ReportHandler) decodeDates(w http.ResponseWriter, r *http.Request) (request.SelectDatesRequest, []time.Time, bool) {
	var req request.SelectDatesRequest
	if !decodeBody(w, r, &req) {
		return req, nil, false
	}

	if err := validation.ValidateUUID(req.ProductID); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return req, nil, false
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		date, err := validation.ParseDate(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return req, nil, false
		}
		dates = append(dates, date)
	}

	return req, dates, true
}

// SelectionsResponse reports the current per-product date selections.
type SelectionsResponse struct {
	Selections  map[string][]time.Time `json:"selections"`
	UniqueCount int                    `json:"uniqueCount"`
	Cap         int                    `json:"cap"`
}

func (h *ReportHandler) respondSelections(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, SelectionsResponse{
		Selections:  h.dateService.Selections(),
		UniqueCount: h.dateService.GlobalUniqueCount(),
		Cap:         h.dateService.Cap(),
	})
}
