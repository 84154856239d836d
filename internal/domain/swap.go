package domain

import (
	"time"

	"github.com/google/uuid"
)

// SwapStatus is the lifecycle state of a swap request.
type SwapStatus string

// Possible swap request status values. Anything but PENDING is terminal.
const (
	SwapStatusPending  SwapStatus = "PENDING"
	SwapStatusAccepted SwapStatus = "ACCEPTED"
	SwapStatusRejected SwapStatus = "REJECTED"
)

// IsValid reports whether s is one of the known swap statuses.
func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapStatusPending, SwapStatusAccepted, SwapStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the request has already been answered.
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusRejected
}

// Decision is the receiver's answer to a swap request.
type Decision string

// Possible decisions
const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// IsValid reports whether d is accept or reject.
func (d Decision) IsValid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// ResultingStatus maps a decision to the request status it produces.
func (d Decision) ResultingStatus() SwapStatus {
	if d == DecisionAccept {
		return SwapStatusAccepted
	}
	return SwapStatusRejected
}

// SwapRequest is a proposal to exchange the requester's offered slot for the
// receiver's target slot. It references both slots but owns neither.
type SwapRequest struct {
	ID            uuid.UUID  `json:"id"`
	RequesterID   uuid.UUID  `json:"requester_id"`
	ReceiverID    uuid.UUID  `json:"receiver_id"`
	OfferedSlotID uuid.UUID  `json:"offered_slot_id"`
	TargetSlotID  uuid.UUID  `json:"target_slot_id"`
	Status        SwapStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

// NewSwapRequest creates a PENDING request from the two slots as they are
// owned right now. Ownership preconditions are the caller's responsibility;
// this only enforces the structural invariants.
func NewSwapRequest(requesterID uuid.UUID, offered, target *Slot) (*SwapRequest, error) {
	req := &SwapRequest{
		ID:            uuid.New(),
		RequesterID:   requesterID,
		ReceiverID:    target.OwnerID,
		OfferedSlotID: offered.ID,
		TargetSlotID:  target.ID,
		Status:        SwapStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks if the SwapRequest has valid data.
func (r *SwapRequest) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	if r.RequesterID == uuid.Nil || r.ReceiverID == uuid.Nil {
		return NewValidationError("requester_id", "and receiver_id are required", ErrInvalidID)
	}

	if r.RequesterID == r.ReceiverID {
		return NewValidationError("receiver_id", "must differ from requester_id", ErrValidation)
	}

	if r.OfferedSlotID == uuid.Nil || r.TargetSlotID == uuid.Nil {
		return NewValidationError("offered_slot_id", "and target_slot_id are required", ErrInvalidID)
	}

	if r.OfferedSlotID == r.TargetSlotID {
		return NewValidationError("target_slot_id", "must differ from offered_slot_id", ErrValidation)
	}

	if !r.Status.IsValid() {
		return NewValidationError("status", "is not a known swap status", ErrValidation)
	}

	return nil
}
