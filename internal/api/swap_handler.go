package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/slotswap-api/internal/api/shared"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/service"
)

// SwapHandler exposes the swap negotiation engine and its listings.
type SwapHandler struct {
	swaps  service.SwapService
	logger *slog.Logger
}

// NewSwapHandler creates a new SwapHandler
func NewSwapHandler(swaps service.SwapService, logger *slog.Logger) *SwapHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SwapHandler{
		swaps:  swaps,
		logger: logger.With(slog.String("component", "swap_handler")),
	}
}

// ProposeSwap handles POST /swaps/requests
func (h *SwapHandler) ProposeSwap(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ProposeSwapRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	offeredID, err := uuid.Parse(req.OfferedSlotID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("offered_slot_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}
	targetID, err := uuid.Parse(req.TargetSlotID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("target_slot_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	swap, err := h.swaps.ProposeSwap(r.Context(), userID, offeredID, targetID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to propose swap")
		return
	}

	log.Debug("swap proposed via API", slog.String("request_id", swap.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, swapToResponse(swap))
}

// RespondSwap handles POST /swaps/requests/{id}/response
func (h *SwapHandler) RespondSwap(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, requestID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RespondSwapRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.swaps.RespondSwap(r.Context(), userID, requestID, domain.Decision(req.Decision))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to respond to swap request")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SwapResolutionResponse{
		RequestID: res.RequestID,
		Status:    string(res.Status),
		Request:   swapToResponse(res.Request),
	})
}

// ListSwappable handles GET /swaps/swappable-slots
func (h *SwapHandler) ListSwappable(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	items, err := h.swaps.ListSwappable(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list swappable slots")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, swappableToResponse(items))
}

// ListIncoming handles GET /swaps/incoming
func (h *SwapHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.swaps.ListIncoming, "Failed to list incoming requests")
}

// ListOutgoing handles GET /swaps/outgoing
func (h *SwapHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.swaps.ListOutgoing, "Failed to list outgoing requests")
}

func (h *SwapHandler) listRequests(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, userID uuid.UUID) ([]service.SwapRequestView, error),
	fallback string,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	views, err := list(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, viewsToResponse(views))
}
