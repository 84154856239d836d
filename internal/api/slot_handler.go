package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/slotswap-api/internal/api/shared"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/service"
)

// SlotHandler handles a user's own slots.
type SlotHandler struct {
	slots  service.SlotService
	logger *slog.Logger
}

// NewSlotHandler creates a new SlotHandler
func NewSlotHandler(slots service.SlotService, logger *slog.Logger) *SlotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlotHandler{
		slots:  slots,
		logger: logger.With(slog.String("component", "slot_handler")),
	}
}

// CreateSlot handles POST /slots
func (h *SlotHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateSlotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	slot, err := h.slots.CreateSlot(r.Context(), userID, req.Title, req.StartTime, req.EndTime,
		domain.SlotStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create slot")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, slotToResponse(slot))
}

// ListMySlots handles GET /slots
func (h *SlotHandler) ListMySlots(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	slots, err := h.slots.ListMySlots(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list slots")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, slotsToResponse(slots))
}

// UpdateSlot handles PUT /slots/{id}
func (h *SlotHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, slotID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateSlotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	update := service.SlotUpdate{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.Status != nil {
		status := domain.SlotStatus(*req.Status)
		update.Status = &status
	}

	slot, err := h.slots.UpdateSlot(r.Context(), userID, slotID, update)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update slot")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, slotToResponse(slot))
}

// DeleteSlot handles DELETE /slots/{id}
func (h *SlotHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, slotID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.slots.DeleteSlot(r.Context(), userID, slotID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete slot")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
