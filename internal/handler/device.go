package handler

import (
	"net/http"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// DeviceHandler handles push device registration endpoints
type DeviceHandler struct {
	pushService *service.PushService
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(pushService *service.PushService) *DeviceHandler {
	return &DeviceHandler{
		pushService: pushService,
	}
}

// Register handles POST /v1/devices
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.RegisterDeviceRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	device, err := h.pushService.RegisterDevice(r.Context(), accountID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, device, nil)
}

// List handles GET /v1/devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	devices, err := h.pushService.ListDevices(r.Context(), accountID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, devices, nil, nil)
}

// Unregister handles DELETE /v1/devices/{id}
func (h *DeviceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.pushService.UnregisterDevice(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
