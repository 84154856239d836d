package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User UserResponse `json:"user"`

	// Token is the JWT used for API authorization
	Token string `json:"token"`
}

// CreateSlotRequest defines the payload for creating a slot.
// Status defaults to BUSY.
type CreateSlotRequest struct {
	Title     string    `json:"title"      validate:"required,max=200"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time"   validate:"required,gtfield=StartTime"`
	Status    string    `json:"status"     validate:"omitempty,oneof=BUSY SWAPPABLE SWAP_PENDING"`
}

// UpdateSlotRequest defines the payload for editing a slot. Omitted fields
// are left unchanged.
type UpdateSlotRequest struct {
	Title     *string    `json:"title"      validate:"omitempty,min=1,max=200"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    *string    `json:"status"     validate:"omitempty,oneof=BUSY SWAPPABLE SWAP_PENDING"`
}

// ProposeSwapRequest defines the payload for offering a swap.
type ProposeSwapRequest struct {
	OfferedSlotID string `json:"offered_slot_id" validate:"required,uuid"`
	TargetSlotID  string `json:"target_slot_id"  validate:"required,uuid"`
}

// RespondSwapRequest defines the payload for answering a swap request.
type RespondSwapRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}

// SlotResponse represents the response data for a slot
type SlotResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SwappableSlotResponse is a slot on the marketplace with its owner.
type SwappableSlotResponse struct {
	SlotResponse
	Owner UserResponse `json:"owner"`
}

// SwapRequestResponse represents the response data for a swap request
type SwapRequestResponse struct {
	ID            uuid.UUID  `json:"id"`
	RequesterID   uuid.UUID  `json:"requester_id"`
	ReceiverID    uuid.UUID  `json:"receiver_id"`
	OfferedSlotID uuid.UUID  `json:"offered_slot_id"`
	TargetSlotID  uuid.UUID  `json:"target_slot_id"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

// SwapRequestViewResponse is a request joined with the other party and both
// slots. A slot deleted after resolution is omitted.
type SwapRequestViewResponse struct {
	SwapRequestResponse
	Counterparty UserResponse  `json:"counterparty"`
	OfferedSlot  *SlotResponse `json:"offered_slot,omitempty"`
	TargetSlot   *SlotResponse `json:"target_slot,omitempty"`
}

// SwapResolutionResponse confirms the outcome of a response.
type SwapResolutionResponse struct {
	RequestID uuid.UUID           `json:"request_id"`
	Status    string              `json:"status"`
	Request   SwapRequestResponse `json:"request"`
}

func userToResponse(u domain.UserSummary) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func slotToResponse(s *domain.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Status:    string(s.Status),
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func slotsToResponse(slots []*domain.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotToResponse(s))
	}
	return out
}

func optionalSlot(s *domain.Slot) *SlotResponse {
	if s == nil {
		return nil
	}
	resp := slotToResponse(s)
	return &resp
}

func swapToResponse(r *domain.SwapRequest) SwapRequestResponse {
	return SwapRequestResponse{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		ReceiverID:    r.ReceiverID,
		OfferedSlotID: r.OfferedSlotID,
		TargetSlotID:  r.TargetSlotID,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		RespondedAt:   r.RespondedAt,
	}
}

func swappableToResponse(items []service.SwappableSlot) []SwappableSlotResponse {
	out := make([]SwappableSlotResponse, 0, len(items))
	for _, it := range items {
		out = append(out, SwappableSlotResponse{
			SlotResponse: slotToResponse(it.Slot),
			Owner:        userToResponse(it.Owner),
		})
	}
	return out
}

func viewsToResponse(views []service.SwapRequestView) []SwapRequestViewResponse {
	out := make([]SwapRequestViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, SwapRequestViewResponse{
			SwapRequestResponse: swapToResponse(v.Request),
			Counterparty:        userToResponse(v.Counterparty),
			OfferedSlot:         optionalSlot(v.OfferedSlot),
			TargetSlot:          optionalSlot(v.TargetSlot),
		})
	}
	return out
}
