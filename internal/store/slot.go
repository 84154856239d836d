package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
)

// SlotFilter selects slots for Find. Zero-valued fields do not filter.
// Results are ordered by start time, then id.
type SlotFilter struct {
	IDs            []uuid.UUID
	OwnerID        uuid.UUID
	ExcludeOwnerID uuid.UUID
	Status         domain.SlotStatus
}

// SlotPatch is a partial update. Nil fields are left unchanged.
// When ExpectStatus is set the update only applies if the stored status
// matches it; otherwise ErrStaleState is returned and nothing changes.
type SlotPatch struct {
	Title        *string
	StartTime    *time.Time
	EndTime      *time.Time
	OwnerID      *uuid.UUID
	Status       *domain.SlotStatus
	ExpectStatus *domain.SlotStatus
}

// SlotStore defines the interface for slot data persistence.
type SlotStore interface {
	// Create saves a new slot to the store.
	// Returns ErrInvalidEntity if the slot fails validation.
	Create(ctx context.Context, slot *domain.Slot) error

	// GetByID retrieves a slot by its unique ID.
	// Returns ErrSlotNotFound if the slot does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)

	// GetByIDForUpdate behaves like GetByID but also locks the slot until the
	// enclosing transaction ends. Outside a transaction it is a plain read.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Slot, error)

	// Find returns every slot matching the filter.
	Find(ctx context.Context, filter SlotFilter) ([]*domain.Slot, error)

	// Update applies patch to the slot and returns the stored result.
	// Every successful update increments Version and refreshes UpdatedAt.
	// Returns ErrSlotNotFound if the slot does not exist and ErrStaleState
	// if the ExpectStatus guard does not hold.
	Update(ctx context.Context, id uuid.UUID, patch SlotPatch) (*domain.Slot, error)

	// Delete removes a slot.
	// Returns ErrSlotNotFound if the slot does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StatusPtr returns a pointer to s, for building patches inline.
func StatusPtr(s domain.SlotStatus) *domain.SlotStatus {
	return &s
}
