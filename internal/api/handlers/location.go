package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/gabaylakad/backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationHandler struct {
	locationService *service.LocationService
	locations       repository.LocationRepository
	devices         repository.DeviceRepository
}

func NewLocationHandler(locationService *service.LocationService, locations repository.LocationRepository, devices repository.DeviceRepository) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		locations:       locations,
		devices:         devices,
	}
}

type CreateLocationRequest struct {
	DeviceID    string     `json:"deviceId" validate:"required,uuid"`
	Latitude    float64    `json:"latitude" validate:"required"`
	Longitude   float64    `json:"longitude" validate:"required"`
	Speed       *float64   `json:"speed"`
	Heading     *float64   `json:"heading"`
	Accuracy    *float64   `json:"accuracy"`
	Street      string     `json:"street"`
	City        string     `json:"city"`
	PlaceName   string     `json:"placeName"`
	ContextTag  string     `json:"contextTag"`
	NearestPOI  string     `json:"nearestPoi"`
	POIDistance *float64   `json:"poiDistance"`
	RecordedAt  *time.Time `json:"recordedAt"`
}

type UpdateLocationRequest struct {
	ContextTag string `json:"contextTag"`
	PlaceName  string `json:"placeName"`
}

func (h *LocationHandler) deviceOwnedBy(r *http.Request, deviceID uuid.UUID) (bool, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return false, nil
	}

	device, err := h.devices.GetByID(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return device.UserID != nil && *device.UserID == userID, nil
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset := pagination(r)
	samples, err := h.locations.ListByUserID(r.Context(), userID, limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, samples)
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	sample, err := h.locations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeMessage(w, http.StatusNotFound, "Location not found")
			return
		}
		writeStoreError(w, err)
		return
	}

	owned, err := h.deviceOwnedBy(r, sample.DeviceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !owned {
		writeMessage(w, http.StatusNotFound, "Location not found")
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return
	}

	owned, err := h.deviceOwnedBy(r, deviceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !owned {
		writeMessage(w, http.StatusNotFound, "Device not found")
		return
	}

	sample := &domain.LocationSample{
		DeviceID:    deviceID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Speed:       req.Speed,
		Heading:     req.Heading,
		Accuracy:    req.Accuracy,
		Street:      req.Street,
		City:        req.City,
		PlaceName:   req.PlaceName,
		ContextTag:  req.ContextTag,
		NearestPOI:  req.NearestPOI,
		POIDistance: req.POIDistance,
	}
	if req.RecordedAt != nil {
		sample.RecordedAt = *req.RecordedAt
	}

	if err := h.locationService.Record(r.Context(), sample); err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			writeMessage(w, http.StatusNotFound, "Device not found")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sample)
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	sample, err := h.locations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeMessage(w, http.StatusNotFound, "Location not found")
			return
		}
		writeStoreError(w, err)
		return
	}

	owned, err := h.deviceOwnedBy(r, sample.DeviceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !owned {
		writeMessage(w, http.StatusNotFound, "Location not found")
		return
	}

	var req UpdateLocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// The sample itself is append-only; only annotations are editable.
	sample.ContextTag = req.ContextTag
	sample.PlaceName = req.PlaceName
	if err := h.locations.Update(r.Context(), sample); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	sample, err := h.locations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeMessage(w, http.StatusNotFound, "Location not found")
			return
		}
		writeStoreError(w, err)
		return
	}

	owned, err := h.deviceOwnedBy(r, sample.DeviceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !owned {
		writeMessage(w, http.StatusNotFound, "Location not found")
		return
	}

	if err := h.locations.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *LocationHandler) DeviceHistory(w http.ResponseWriter, r *http.Request) {
	deviceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return
	}

	owned, err := h.deviceOwnedBy(r, deviceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !owned {
		writeMessage(w, http.StatusNotFound, "Device not found")
		return
	}

	limit, offset := pagination(r)
	samples, err := h.locationService.History(r.Context(), deviceID, limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, samples)
}

func (h *LocationHandler) DeviceLatest(w http.ResponseWriter, r *http.Request) {
	deviceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return
	}

	owned, err := h.deviceOwnedBy(r, deviceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !owned {
		writeMessage(w, http.StatusNotFound, "Device not found")
		return
	}

	sample, err := h.locationService.Latest(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No locations recorded for this device")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 100
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
