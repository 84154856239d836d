package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
)

// Swap event types
const (
	TypeSwapProposed = "swap.proposed"
	TypeSwapAccepted = "swap.accepted"
	TypeSwapRejected = "swap.rejected"
)

// SwapEvent describes a committed change to a swap request.
type SwapEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	RequestID     uuid.UUID         `json:"request_id"`
	RequesterID   uuid.UUID         `json:"requester_id"`
	ReceiverID    uuid.UUID         `json:"receiver_id"`
	OfferedSlotID uuid.UUID         `json:"offered_slot_id"`
	TargetSlotID  uuid.UUID         `json:"target_slot_id"`
	Status        domain.SwapStatus `json:"status"`

	// OccurredAt is when the change was committed
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSwapEvent builds an event of eventType from the request's current state.
func NewSwapEvent(eventType string, req *domain.SwapRequest) *SwapEvent {
	return &SwapEvent{
		ID:            uuid.New(),
		Type:          eventType,
		RequestID:     req.ID,
		RequesterID:   req.RequesterID,
		ReceiverID:    req.ReceiverID,
		OfferedSlotID: req.OfferedSlotID,
		TargetSlotID:  req.TargetSlotID,
		Status:        req.Status,
		OccurredAt:    time.Now().UTC(),
	}
}

// Recipients returns the users who should be told about the event.
func (e *SwapEvent) Recipients() []uuid.UUID {
	return []uuid.UUID{e.RequesterID, e.ReceiverID}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *SwapEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *SwapEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *SwapEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *SwapEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *SwapEvent) error { return nil }
