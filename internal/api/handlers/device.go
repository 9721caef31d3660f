package handlers

import (
	"errors"
	"net/http"

	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceHandler struct {
	devices repository.DeviceRepository
}

func NewDeviceHandler(devices repository.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

type CreateDeviceRequest struct {
	SerialNumber string `json:"serialNumber" validate:"required"`
	Nickname     string `json:"nickname"`
}

type UpdateDeviceRequest struct {
	Nickname string `json:"nickname"`
}

// ownedDevice loads a device and hides it behind 404 when it belongs to
// someone else.
func (h *DeviceHandler) ownedDevice(w http.ResponseWriter, r *http.Request) (*domain.Device, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return nil, false
	}

	device, err := h.devices.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeMessage(w, http.StatusNotFound, "Device not found")
			return nil, false
		}
		writeStoreError(w, err)
		return nil, false
	}

	if device.UserID == nil || *device.UserID != userID {
		writeMessage(w, http.StatusNotFound, "Device not found")
		return nil, false
	}

	return device, true
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	devices, err := h.devices.ListByUserID(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	existing, err := h.devices.GetBySerialNumber(r.Context(), req.SerialNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeStoreError(w, err)
		return
	}
	if existing != nil && existing.UserID != nil && *existing.UserID != userID {
		writeMessage(w, http.StatusConflict, "Serial number is already registered to another user")
		return
	}

	if existing != nil {
		existing.UserID = &userID
		existing.Nickname = req.Nickname
		if err := h.devices.Update(r.Context(), existing); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, existing)
		return
	}

	device := &domain.Device{
		ID:           uuid.New(),
		SerialNumber: req.SerialNumber,
		UserID:       &userID,
		Nickname:     req.Nickname,
	}
	if err := h.devices.Create(r.Context(), device); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, device)
}

func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}

	var req UpdateDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	device.Nickname = req.Nickname
	if err := h.devices.Update(r.Context(), device); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, device)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}

	if err := h.devices.Delete(r.Context(), device.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
