package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/redact"
	"github.com/phrazzld/slotswap-api/internal/store"
)

// SlotUpdate carries the owner-editable fields of a slot. Nil fields are unchanged.
type SlotUpdate struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Status    *domain.SlotStatus
}

// SlotService manages a user's own calendar slots.
type SlotService interface {
	// CreateSlot adds a slot for ownerID. An empty status means BUSY.
	CreateSlot(ctx context.Context, ownerID uuid.UUID, title string, start, end time.Time, status domain.SlotStatus) (*domain.Slot, error)

	// ListMySlots returns the caller's slots ordered by start time.
	ListMySlots(ctx context.Context, ownerID uuid.UUID) ([]*domain.Slot, error)

	// UpdateSlot edits a slot the caller owns.
	UpdateSlot(ctx context.Context, callerID, slotID uuid.UUID, update SlotUpdate) (*domain.Slot, error)

	// DeleteSlot removes a slot the caller owns.
	DeleteSlot(ctx context.Context, callerID, slotID uuid.UUID) error
}

type slotServiceImpl struct {
	tx     store.Transactor
	logger *slog.Logger
}

var _ SlotService = (*slotServiceImpl)(nil)

// NewSlotService creates a new SlotService.
func NewSlotService(tx store.Transactor, logger *slog.Logger) (SlotService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &slotServiceImpl{
		tx:     tx,
		logger: logger.With(slog.String("component", "slot_service")),
	}, nil
}

// ownerSettable reports whether an owner may put a slot directly into status.
// SWAP_PENDING is reserved for the negotiation engine.
func ownerSettable(status domain.SlotStatus) bool {
	return status == domain.SlotStatusBusy || status == domain.SlotStatusSwappable
}

func (s *slotServiceImpl) CreateSlot(
	ctx context.Context,
	ownerID uuid.UUID,
	title string,
	start, end time.Time,
	status domain.SlotStatus,
) (*domain.Slot, error) {
	const op = "create_slot"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if status == "" {
		status = domain.SlotStatusBusy
	}
	if !ownerSettable(status) {
		return nil, NewSwapServiceError(op, "status must be BUSY or SWAPPABLE", ErrInvalidState)
	}

	slot, err := domain.NewSlot(ownerID, title, start, end, status)
	if err != nil {
		return nil, translateError(op, err)
	}

	if err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		return st.Slots.Create(ctx, slot)
	}); err != nil {
		log.Error("failed to create slot",
			redact.Attr(err),
			slog.String("owner_id", ownerID.String()))
		return nil, translateError(op, err)
	}

	log.Debug("slot created",
		slog.String("slot_id", slot.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return slot, nil
}

func (s *slotServiceImpl) ListMySlots(ctx context.Context, ownerID uuid.UUID) ([]*domain.Slot, error) {
	slots, err := s.tx.Stores().Slots.Find(ctx, store.SlotFilter{OwnerID: ownerID})
	if err != nil {
		return nil, translateError("list_my_slots", err)
	}
	return slots, nil
}

func (s *slotServiceImpl) UpdateSlot(
	ctx context.Context,
	callerID, slotID uuid.UUID,
	update SlotUpdate,
) (*domain.Slot, error) {
	const op = "update_slot"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("slot_id", slotID.String()),
		slog.String("caller_id", callerID.String()))

	var updated *domain.Slot
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		slot, err := st.Slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewSwapServiceError(op, "slot not found", ErrNotFound)
			}
			return err
		}
		if !slot.OwnedBy(callerID) {
			return NewSwapServiceError(op, "slot is not yours", ErrNotOwner)
		}
		if slot.Status == domain.SlotStatusSwapPending {
			return NewSwapServiceError(op, "slot has a pending swap", ErrInvalidState)
		}

		if update.Status != nil && *update.Status != slot.Status {
			if !ownerSettable(*update.Status) || !domain.CanTransition(slot.Status, *update.Status) {
				return NewSwapServiceError(op,
					"cannot change status from "+string(slot.Status)+" to "+string(*update.Status),
					ErrInvalidState)
			}
		}

		// Validate the merged result before writing.
		candidate := *slot
		if update.Title != nil {
			candidate.Title = strings.TrimSpace(*update.Title)
		}
		if update.StartTime != nil {
			candidate.StartTime = update.StartTime.UTC()
		}
		if update.EndTime != nil {
			candidate.EndTime = update.EndTime.UTC()
		}
		if err := candidate.Validate(); err != nil {
			return err
		}

		patch := store.SlotPatch{ExpectStatus: store.StatusPtr(slot.Status)}
		if update.Title != nil {
			patch.Title = &candidate.Title
		}
		if update.StartTime != nil {
			patch.StartTime = &candidate.StartTime
		}
		if update.EndTime != nil {
			patch.EndTime = &candidate.EndTime
		}
		if update.Status != nil && *update.Status != slot.Status {
			patch.Status = update.Status
		}

		updated, err = st.Slots.Update(ctx, slotID, patch)
		return err
	})
	if err != nil {
		err = translateError(op, err)
		if KindOf(err) == KindInternal {
			log.Error("failed to update slot", redact.Attr(err))
		}
		return nil, err
	}

	log.Debug("slot updated", slog.String("status", string(updated.Status)))
	return updated, nil
}

func (s *slotServiceImpl) DeleteSlot(ctx context.Context, callerID, slotID uuid.UUID) error {
	const op = "delete_slot"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("slot_id", slotID.String()),
		slog.String("caller_id", callerID.String()))

	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		slot, err := st.Slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewSwapServiceError(op, "slot not found", ErrNotFound)
			}
			return err
		}
		if !slot.OwnedBy(callerID) {
			return NewSwapServiceError(op, "slot is not yours", ErrNotOwner)
		}
		if slot.Status == domain.SlotStatusSwapPending {
			return NewSwapServiceError(op, "slot has a pending swap", ErrInvalidState)
		}
		return st.Slots.Delete(ctx, slotID)
	})
	if err != nil {
		err = translateError(op, err)
		if KindOf(err) == KindInternal {
			log.Error("failed to delete slot", redact.Attr(err))
		}
		return err
	}

	log.Debug("slot deleted")
	return nil
}
