package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the negotiation state of a slot.
type SlotStatus string

// Possible slot status values
const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING"
)

// MaxSlotTitleLength bounds the free-form title.
const MaxSlotTitleLength = 200

// slotTransitions lists every legal status edge. Anything absent is illegal.
var slotTransitions = map[SlotStatus][]SlotStatus{
	SlotStatusBusy:        {SlotStatusSwappable},
	SlotStatusSwappable:   {SlotStatusSwapPending},
	SlotStatusSwapPending: {SlotStatusSwappable, SlotStatusBusy},
}

// IsValid reports whether s is one of the known slot statuses.
func (s SlotStatus) IsValid() bool {
	_, ok := slotTransitions[s]
	return ok
}

// CanTransition reports whether a slot may move from one status to another.
func CanTransition(from, to SlotStatus) bool {
	for _, next := range slotTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Slot is a time-bound calendar entry owned by exactly one user.
// Ownership moves to the counterparty when a swap is accepted.
type Slot struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Status    SlotStatus `json:"status"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewSlot creates a new Slot owned by ownerID.
// An empty status defaults to BUSY. Returns an error if validation fails.
func NewSlot(ownerID uuid.UUID, title string, start, end time.Time, status SlotStatus) (*Slot, error) {
	if status == "" {
		status = SlotStatusBusy
	}

	now := time.Now().UTC()
	slot := &Slot{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Status:    status,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := slot.Validate(); err != nil {
		return nil, err
	}

	return slot, nil
}

// Validate checks if the Slot has valid data.
func (s *Slot) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	if s.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "cannot be empty", ErrInvalidID)
	}

	if s.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrValidation)
	}

	if len(s.Title) > MaxSlotTitleLength {
		return NewValidationError("title", "is too long", ErrValidation)
	}

	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return NewValidationError("start_time", "and end_time are required", ErrValidation)
	}

	if !s.StartTime.Before(s.EndTime) {
		return NewValidationError("end_time", "must be after start_time", ErrValidation)
	}

	if !s.Status.IsValid() {
		return NewValidationError("status", "is not a known slot status", ErrValidation)
	}

	return nil
}

// OwnedBy reports whether userID currently owns the slot.
func (s *Slot) OwnedBy(userID uuid.UUID) bool {
	return s.OwnerID == userID
}
