package handlers

import (
	"net/http"

	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/repository"
)

type DashboardHandler struct {
	dashboard repository.DashboardRepository
}

func NewDashboardHandler(dashboard repository.DashboardRepository) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	overviews, err := h.dashboard.OverviewByUserID(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"devices": overviews})
}
