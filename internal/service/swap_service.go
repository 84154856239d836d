package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/events"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/redact"
	"github.com/phrazzld/slotswap-api/internal/store"
)

// SwapResolution confirms the outcome of a response.
type SwapResolution struct {
	RequestID uuid.UUID         `json:"request_id"`
	Status    domain.SwapStatus `json:"status"`
	Request   *domain.SwapRequest
}

// SwappableSlot is a slot on offer together with its owner.
type SwappableSlot struct {
	Slot  *domain.Slot
	Owner domain.UserSummary
}

// SwapRequestView is a request with the other party and both slots resolved.
// A slot deleted after the request was resolved is nil.
type SwapRequestView struct {
	Request      *domain.SwapRequest
	Counterparty domain.UserSummary
	OfferedSlot  *domain.Slot
	TargetSlot   *domain.Slot
}

// SwapService is the swap negotiation engine and its read projections.
type SwapService interface {
	// ProposeSwap offers the requester's slot in exchange for another user's slot.
	ProposeSwap(ctx context.Context, requesterID, offeredSlotID, targetSlotID uuid.UUID) (*domain.SwapRequest, error)

	// RespondSwap accepts or rejects a pending request addressed to responderID.
	RespondSwap(ctx context.Context, responderID, requestID uuid.UUID, decision domain.Decision) (*SwapResolution, error)

	// ListSwappable returns every SWAPPABLE slot not owned by userID, by start time.
	ListSwappable(ctx context.Context, userID uuid.UUID) ([]SwappableSlot, error)

	// ListIncoming returns requests received by userID, newest first.
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]SwapRequestView, error)

	// ListOutgoing returns requests sent by userID, newest first.
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]SwapRequestView, error)
}

// swapServiceImpl implements the SwapService interface
type swapServiceImpl struct {
	tx      store.Transactor
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
}

// Ensure swapServiceImpl implements SwapService interface
var _ SwapService = (*swapServiceImpl)(nil)

// NewSwapService creates a new SwapService.
// It returns an error if the transactor is nil. A nil emitter discards events.
func NewSwapService(tx store.Transactor, emitter events.EventEmitter, logger *slog.Logger) (SwapService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &swapServiceImpl{
		tx:      tx,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "swap_service")),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// lockSlots loads and row-locks the given slots in ascending id order so two
// units of work touching the same pair cannot deadlock. Duplicate ids are
// locked once.
func lockSlots(ctx context.Context, slots store.SlotStore, ids ...uuid.UUID) (map[uuid.UUID]*domain.Slot, error) {
	ordered := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i][:], ordered[j][:]) < 0
	})

	locked := make(map[uuid.UUID]*domain.Slot, len(ordered))
	for _, id := range ordered {
		slot, err := slots.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = slot
	}
	return locked, nil
}

// transition moves a locked slot to status to, optionally handing it to a new
// owner. The write is guarded on the status the slot was read with.
func transition(
	ctx context.Context,
	slots store.SlotStore,
	slot *domain.Slot,
	to domain.SlotStatus,
	newOwner *uuid.UUID,
) (*domain.Slot, error) {
	if !domain.CanTransition(slot.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidState, slot.Status, to)
	}
	return slots.Update(ctx, slot.ID, store.SlotPatch{
		OwnerID:      newOwner,
		Status:       store.StatusPtr(to),
		ExpectStatus: store.StatusPtr(slot.Status),
	})
}

// ProposeSwap implements SwapService.ProposeSwap
func (s *swapServiceImpl) ProposeSwap(
	ctx context.Context,
	requesterID, offeredSlotID, targetSlotID uuid.UUID,
) (*domain.SwapRequest, error) {
	const op = "propose_swap"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("requester_id", requesterID.String()),
		slog.String("offered_slot_id", offeredSlotID.String()),
		slog.String("target_slot_id", targetSlotID.String()))

	var created *domain.SwapRequest
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		locked, err := lockSlots(ctx, st.Slots, offeredSlotID, targetSlotID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewSwapServiceError(op, "slot not found", ErrNotFound)
			}
			return err
		}
		offered, target := locked[offeredSlotID], locked[targetSlotID]

		if !offered.OwnedBy(requesterID) {
			return NewSwapServiceError(op, "offered slot is not yours", ErrNotOwner)
		}
		if target.OwnedBy(requesterID) {
			return NewSwapServiceError(op, "target slot is yours", ErrSelfSwap)
		}
		if offered.Status != domain.SlotStatusSwappable || target.Status != domain.SlotStatusSwappable {
			return NewSwapServiceError(op,
				fmt.Sprintf("slots must be %s (offered %s, target %s)",
					domain.SlotStatusSwappable, offered.Status, target.Status),
				ErrInvalidState)
		}

		req, err := domain.NewSwapRequest(requesterID, offered, target)
		if err != nil {
			return err
		}
		req.CreatedAt = s.now()

		if err := st.Swaps.Create(ctx, req); err != nil {
			return err
		}
		for _, slot := range []*domain.Slot{offered, target} {
			if _, err := transition(ctx, st.Slots, slot, domain.SlotStatusSwapPending, nil); err != nil {
				return err
			}
		}

		created = req
		return nil
	})
	if err != nil {
		err = translateError(op, err)
		s.logFailure(log, "swap proposal rejected", err)
		return nil, err
	}

	log.Info("swap proposed", slog.String("request_id", created.ID.String()))
	s.emit(ctx, events.NewSwapEvent(events.TypeSwapProposed, created))
	return created, nil
}

// RespondSwap implements SwapService.RespondSwap
func (s *swapServiceImpl) RespondSwap(
	ctx context.Context,
	responderID, requestID uuid.UUID,
	decision domain.Decision,
) (*SwapResolution, error) {
	const op = "respond_swap"
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("responder_id", responderID.String()),
		slog.String("request_id", requestID.String()),
		slog.String("decision", string(decision)))

	if !decision.IsValid() {
		return nil, NewSwapServiceError(op, "invalid decision",
			domain.NewValidationError("decision", "must be accept or reject", domain.ErrValidation))
	}

	var resolved *domain.SwapRequest
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		req, err := st.Swaps.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewSwapServiceError(op, "swap request not found", ErrNotFound)
			}
			return err
		}

		if req.ReceiverID != responderID {
			return NewSwapServiceError(op, "caller is not the receiver", ErrNotAuthorized)
		}
		if req.Status != domain.SwapStatusPending {
			return NewSwapServiceError(op, fmt.Sprintf("request is %s", req.Status), ErrAlreadyResolved)
		}

		locked, err := lockSlots(ctx, st.Slots, req.OfferedSlotID, req.TargetSlotID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewSwapServiceError(op, "referenced slot not found", ErrNotFound)
			}
			return err
		}
		offered, target := locked[req.OfferedSlotID], locked[req.TargetSlotID]

		if offered.Status != domain.SlotStatusSwapPending || target.Status != domain.SlotStatusSwapPending {
			return NewSwapServiceError(op,
				fmt.Sprintf("slots must be %s (offered %s, target %s)",
					domain.SlotStatusSwapPending, offered.Status, target.Status),
				ErrInvalidState)
		}

		resolved, err = st.Swaps.Resolve(ctx, req.ID, decision.ResultingStatus(), s.now())
		if err != nil {
			return err
		}

		if decision == domain.DecisionReject {
			for _, slot := range []*domain.Slot{offered, target} {
				if _, err := transition(ctx, st.Slots, slot, domain.SlotStatusSwappable, nil); err != nil {
					return err
				}
			}
			return nil
		}

		if _, err := transition(ctx, st.Slots, offered, domain.SlotStatusBusy, &req.ReceiverID); err != nil {
			return err
		}
		if _, err := transition(ctx, st.Slots, target, domain.SlotStatusBusy, &req.RequesterID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		err = translateError(op, err)
		s.logFailure(log, "swap response rejected", err)
		return nil, err
	}

	eventType := events.TypeSwapRejected
	if resolved.Status == domain.SwapStatusAccepted {
		eventType = events.TypeSwapAccepted
	}
	log.Info("swap resolved", slog.String("status", string(resolved.Status)))
	s.emit(ctx, events.NewSwapEvent(eventType, resolved))

	return &SwapResolution{
		RequestID: resolved.ID,
		Status:    resolved.Status,
		Request:   resolved,
	}, nil
}

// ListSwappable implements SwapService.ListSwappable
func (s *swapServiceImpl) ListSwappable(ctx context.Context, userID uuid.UUID) ([]SwappableSlot, error) {
	const op = "list_swappable"
	st := s.tx.Stores()

	slots, err := st.Slots.Find(ctx, store.SlotFilter{
		ExcludeOwnerID: userID,
		Status:         domain.SlotStatusSwappable,
	})
	if err != nil {
		return nil, translateError(op, err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		ownerIDs = append(ownerIDs, slot.OwnerID)
	}
	owners, err := st.Users.GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, translateError(op, err)
	}

	out := make([]SwappableSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SwappableSlot{Slot: slot, Owner: summaryOf(slot.OwnerID, owners)})
	}
	return out, nil
}

// ListIncoming implements SwapService.ListIncoming
func (s *swapServiceImpl) ListIncoming(ctx context.Context, userID uuid.UUID) ([]SwapRequestView, error) {
	return s.listRequests(ctx, "list_incoming", store.SwapFilter{ReceiverID: userID}, func(r *domain.SwapRequest) uuid.UUID {
		return r.RequesterID
	})
}

// ListOutgoing implements SwapService.ListOutgoing
func (s *swapServiceImpl) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]SwapRequestView, error) {
	return s.listRequests(ctx, "list_outgoing", store.SwapFilter{RequesterID: userID}, func(r *domain.SwapRequest) uuid.UUID {
		return r.ReceiverID
	})
}

func (s *swapServiceImpl) listRequests(
	ctx context.Context,
	op string,
	filter store.SwapFilter,
	counterparty func(*domain.SwapRequest) uuid.UUID,
) ([]SwapRequestView, error) {
	st := s.tx.Stores()

	reqs, err := st.Swaps.Find(ctx, filter)
	if err != nil {
		return nil, translateError(op, err)
	}
	if len(reqs) == 0 {
		return []SwapRequestView{}, nil
	}

	slotIDs := make([]uuid.UUID, 0, 2*len(reqs))
	userIDs := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		slotIDs = append(slotIDs, r.OfferedSlotID, r.TargetSlotID)
		userIDs = append(userIDs, counterparty(r))
	}

	slots, err := st.Slots.Find(ctx, store.SlotFilter{IDs: slotIDs})
	if err != nil {
		return nil, translateError(op, err)
	}
	slotsByID := make(map[uuid.UUID]*domain.Slot, len(slots))
	for _, slot := range slots {
		slotsByID[slot.ID] = slot
	}

	users, err := st.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, translateError(op, err)
	}

	out := make([]SwapRequestView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, SwapRequestView{
			Request:      r,
			Counterparty: summaryOf(counterparty(r), users),
			OfferedSlot:  slotsByID[r.OfferedSlotID],
			TargetSlot:   slotsByID[r.TargetSlotID],
		})
	}
	return out, nil
}

func summaryOf(id uuid.UUID, users map[uuid.UUID]*domain.User) domain.UserSummary {
	if u, ok := users[id]; ok {
		return u.Summary()
	}
	return domain.UserSummary{ID: id}
}

// emit publishes a committed change. Handler failures do not affect the result.
func (s *swapServiceImpl) emit(ctx context.Context, event *events.SwapEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to deliver swap event",
			redact.Attr(err),
			slog.String("event_type", event.Type),
			slog.String("request_id", event.RequestID.String()))
	}
}

// logFailure logs precondition failures at info, contention at warn and
// anything unexpected at error.
func (s *swapServiceImpl) logFailure(log *slog.Logger, msg string, err error) {
	kind := KindOf(err)
	switch kind {
	case KindInternal:
		log.Error(msg, redact.Attr(err), slog.String("kind", string(kind)))
	case KindTransactionFailure:
		log.Warn(msg, redact.Attr(err), slog.String("kind", string(kind)))
	default:
		log.Info(msg, slog.String("reason", err.Error()), slog.String("kind", string(kind)))
	}
}
