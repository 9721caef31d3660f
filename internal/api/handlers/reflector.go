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

type ReflectorHandler struct {
	reflectors repository.ReflectorRepository
	devices    repository.DeviceRepository
}

func NewReflectorHandler(reflectors repository.ReflectorRepository, devices repository.DeviceRepository) *ReflectorHandler {
	return &ReflectorHandler{reflectors: reflectors, devices: devices}
}

type CreateReflectorRequest struct {
	DeviceID string `json:"deviceId" validate:"required,uuid"`
	Status   string `json:"status" validate:"required"`
}

type UpdateReflectorRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *ReflectorHandler) ownedReflector(w http.ResponseWriter, r *http.Request) (*domain.Reflector, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid reflector id")
		return nil, false
	}

	reflector, err := h.reflectors.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeMessage(w, http.StatusNotFound, "Reflector not found")
			return nil, false
		}
		writeStoreError(w, err)
		return nil, false
	}

	device, err := h.devices.GetByID(r.Context(), reflector.DeviceID)
	if err != nil || device.UserID == nil || *device.UserID != userID {
		writeMessage(w, http.StatusNotFound, "Reflector not found")
		return nil, false
	}

	return reflector, true
}

func (h *ReflectorHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reflectors, err := h.reflectors.ListByUserID(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reflectors)
}

func (h *ReflectorHandler) Get(w http.ResponseWriter, r *http.Request) {
	reflector, ok := h.ownedReflector(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, reflector)
}

func (h *ReflectorHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateReflectorRequest
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

	reflector := &domain.Reflector{
		ID:       uuid.New(),
		DeviceID: deviceID,
		Status:   req.Status,
		LastSeen: time.Now(),
	}
	if err := h.reflectors.Create(r.Context(), reflector); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reflector)
}

func (h *ReflectorHandler) Update(w http.ResponseWriter, r *http.Request) {
	reflector, ok := h.ownedReflector(w, r)
	if !ok {
		return
	}

	var req UpdateReflectorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reflector.Status = req.Status
	reflector.LastSeen = time.Now()
	if err := h.reflectors.Update(r.Context(), reflector); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reflector)
}

func (h *ReflectorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reflector, ok := h.ownedReflector(w, r)
	if !ok {
		return
	}

	if err := h.reflectors.Delete(r.Context(), reflector.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
