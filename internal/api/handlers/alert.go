package handlers

import (
	"errors"
	"net/http"

	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AlertHandler struct {
	alerts  repository.AlertRepository
	devices repository.DeviceRepository
}

func NewAlertHandler(alerts repository.AlertRepository, devices repository.DeviceRepository) *AlertHandler {
	return &AlertHandler{alerts: alerts, devices: devices}
}

type CreateAlertRequest struct {
	DeviceID string         `json:"deviceId" validate:"required,uuid"`
	Type     string         `json:"type" validate:"required"`
	Message  string         `json:"message"`
	Metadata datatypes.JSON `json:"metadata"`
}

type UpdateAlertRequest struct {
	Resolved bool `json:"resolved"`
}

func (h *AlertHandler) ownedAlert(w http.ResponseWriter, r *http.Request) (*domain.Alert, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid alert id")
		return nil, false
	}

	alert, err := h.alerts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeMessage(w, http.StatusNotFound, "Alert not found")
			return nil, false
		}
		writeStoreError(w, err)
		return nil, false
	}

	device, err := h.devices.GetByID(r.Context(), alert.DeviceID)
	if err != nil || device.UserID == nil || *device.UserID != userID {
		writeMessage(w, http.StatusNotFound, "Alert not found")
		return nil, false
	}

	return alert, true
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := pagination(r)
	alerts, err := h.alerts.ListByUserID(r.Context(), userID, limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	alert, ok := h.ownedAlert(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateAlertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return
	}

	device, err := h.devices.GetByID(r.Context(), deviceID)
	if err != nil || device.UserID == nil || *device.UserID != userID {
		writeMessage(w, http.StatusNotFound, "Device not found")
		return
	}

	alert := &domain.Alert{
		ID:       uuid.New(),
		DeviceID: deviceID,
		Type:     domain.AlertType(req.Type),
		Message:  req.Message,
		Metadata: req.Metadata,
	}
	if err := h.alerts.Create(r.Context(), alert); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, alert)
}

func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	alert, ok := h.ownedAlert(w, r)
	if !ok {
		return
	}

	var req UpdateAlertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	alert.Resolved = req.Resolved
	if err := h.alerts.Update(r.Context(), alert); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	alert, ok := h.ownedAlert(w, r)
	if !ok {
		return
	}

	if err := h.alerts.Delete(r.Context(), alert.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
