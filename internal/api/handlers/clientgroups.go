package handlers

import (
	"net/http"

	"github.com/advisorly/review-engine-backend/internal/repository"
)

// ClientGroupHandler handles client-group HTTP requests.
type ClientGroupHandler struct {
	clientGroupRepo *repository.ClientGroupRepository
}

// NewClientGroupHandler creates a new ClientGroupHandler.
func NewClientGroupHandler(clientGroupRepo *repository.ClientGroupRepository) *ClientGroupHandler {
	return &ClientGroupHandler{clientGroupRepo: clientGroupRepo}
}

// ClientGroupResponse represents one client group in list responses.
type ClientGroupResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Advisor string `json:"advisor"`
	Status  string `json:"status"`
}

// ClientGroups lists all client groups.
//
// Endpoint: GET /api/client-groups
func (h *ClientGroupHandler) ClientGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.clientGroupRepo.GetClientGroups(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response := make([]ClientGroupResponse, len(groups))
	for i, g := range groups {
		response[i] = ClientGroupResponse{
			ID:      g.ID,
			Name:    g.Name,
			Advisor: g.Advisor,
			Status:  g.Status,
		}
	}

	respondJSON(w, http.StatusOK, response)
}
