package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatteryHandler struct {
	batteries repository.BatteryRepository
	devices   repository.DeviceRepository
}

func NewBatteryHandler(batteries repository.BatteryRepository, devices repository.DeviceRepository) *BatteryHandler {
	return &BatteryHandler{batteries: batteries, devices: devices}
}

type CreateBatteryRequest struct {
	DeviceID   string     `json:"deviceId" validate:"required,uuid"`
	Level      int        `json:"level" validate:"min=0,max=100"`
	Charging   bool       `json:"charging"`
	Voltage    float64    `json:"voltage"`
	RecordedAt *time.Time `json:"recordedAt"`
}

type UpdateBatteryRequest struct {
	Level    int  `json:"level" validate:"min=0,max=100"`
	Charging bool `json:"charging"`
}

func (h *BatteryHandler) ownedStatus(w http.ResponseWriter, r *http.Request) (*domain.BatteryStatus, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid battery status id")
		return nil, false
	}

	status, err := h.batteries.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeMessage(w, http.StatusNotFound, "Battery status not found")
			return nil, false
		}
		writeStoreError(w, err)
		return nil, false
	}

	device, err := h.devices.GetByID(r.Context(), status.DeviceID)
	if err != nil || device.UserID == nil || *device.UserID != userID {
		writeMessage(w, http.StatusNotFound, "Battery status not found")
		return nil, false
	}

	return status, true
}

func (h *BatteryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := pagination(r)
	statuses, err := h.batteries.ListByUserID(r.Context(), userID, limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}

func (h *BatteryHandler) Get(w http.ResponseWriter, r *http.Request) {
	status, ok := h.ownedStatus(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *BatteryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateBatteryRequest
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

	status := &domain.BatteryStatus{
		ID:       uuid.New(),
		DeviceID: deviceID,
		Level:    req.Level,
		Charging: req.Charging,
		Voltage:  req.Voltage,
	}
	if req.RecordedAt != nil {
		status.RecordedAt = *req.RecordedAt
	} else {
		status.RecordedAt = time.Now()
	}

	if err := h.batteries.Create(r.Context(), status); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, status)
}

func (h *BatteryHandler) Update(w http.ResponseWriter, r *http.Request) {
	status, ok := h.ownedStatus(w, r)
	if !ok {
		return
	}

	var req UpdateBatteryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status.Level = req.Level
	status.Charging = req.Charging
	if err := h.batteries.Update(r.Context(), status); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *BatteryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	status, ok := h.ownedStatus(w, r)
	if !ok {
		return
	}

	if err := h.batteries.Delete(r.Context(), status.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
