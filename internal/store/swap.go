package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
)

// SwapFilter selects swap requests for Find. Zero-valued fields do not filter.
// SlotID matches either the offered or the target slot.
// Results are ordered newest first.
type SwapFilter struct {
	RequesterID uuid.UUID
	ReceiverID  uuid.UUID
	SlotID      uuid.UUID
	Status      domain.SwapStatus
}

// SwapRequestStore defines the interface for swap request persistence.
type SwapRequestStore interface {
	// Create saves a new swap request.
	// Returns ErrPendingRequestExists if either slot already has a PENDING request.
	Create(ctx context.Context, req *domain.SwapRequest) error

	// GetByID retrieves a swap request by its unique ID.
	// Returns ErrSwapRequestNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SwapRequest, error)

	// GetByIDForUpdate behaves like GetByID but also locks the request until
	// the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.SwapRequest, error)

	// Find returns every swap request matching the filter.
	Find(ctx context.Context, filter SwapFilter) ([]*domain.SwapRequest, error)

	// Resolve moves a PENDING request to a terminal status.
	// Returns ErrSwapRequestNotFound if it does not exist and ErrStaleState
	// if it is no longer PENDING.
	Resolve(ctx context.Context, id uuid.UUID, status domain.SwapStatus, respondedAt time.Time) (*domain.SwapRequest, error)
}
