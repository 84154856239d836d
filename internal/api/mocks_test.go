package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/service"
)

type mockSwapService struct {
	ProposeSwapFn   func(ctx context.Context, requesterID, offeredID, targetID uuid.UUID) (*domain.SwapRequest, error)
	RespondSwapFn   func(ctx context.Context, responderID, requestID uuid.UUID, d domain.Decision) (*service.SwapResolution, error)
	ListSwappableFn func(ctx context.Context, userID uuid.UUID) ([]service.SwappableSlot, error)
	ListIncomingFn  func(ctx context.Context, userID uuid.UUID) ([]service.SwapRequestView, error)
	ListOutgoingFn  func(ctx context.Context, userID uuid.UUID) ([]service.SwapRequestView, error)
}

func (m *mockSwapService) ProposeSwap(ctx context.Context, requesterID, offeredID, targetID uuid.UUID) (*domain.SwapRequest, error) {
	return m.ProposeSwapFn(ctx, requesterID, offeredID, targetID)
}

func (m *mockSwapService) RespondSwap(ctx context.Context, responderID, requestID uuid.UUID, d domain.Decision) (*service.SwapResolution, error) {
	return m.RespondSwapFn(ctx, responderID, requestID, d)
}

func (m *mockSwapService) ListSwappable(ctx context.Context, userID uuid.UUID) ([]service.SwappableSlot, error) {
	return m.ListSwappableFn(ctx, userID)
}

func (m *mockSwapService) ListIncoming(ctx context.Context, userID uuid.UUID) ([]service.SwapRequestView, error) {
	return m.ListIncomingFn(ctx, userID)
}

func (m *mockSwapService) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]service.SwapRequestView, error) {
	return m.ListOutgoingFn(ctx, userID)
}

type mockSlotService struct {
	CreateSlotFn  func(ctx context.Context, ownerID uuid.UUID, title string, start, end time.Time, status domain.SlotStatus) (*domain.Slot, error)
	ListMySlotsFn func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Slot, error)
	UpdateSlotFn  func(ctx context.Context, callerID, slotID uuid.UUID, update service.SlotUpdate) (*domain.Slot, error)
	DeleteSlotFn  func(ctx context.Context, callerID, slotID uuid.UUID) error
}

func (m *mockSlotService) CreateSlot(ctx context.Context, ownerID uuid.UUID, title string, start, end time.Time, status domain.SlotStatus) (*domain.Slot, error) {
	return m.CreateSlotFn(ctx, ownerID, title, start, end, status)
}

func (m *mockSlotService) ListMySlots(ctx context.Context, ownerID uuid.UUID) ([]*domain.Slot, error) {
	return m.ListMySlotsFn(ctx, ownerID)
}

func (m *mockSlotService) UpdateSlot(ctx context.Context, callerID, slotID uuid.UUID, update service.SlotUpdate) (*domain.Slot, error) {
	return m.UpdateSlotFn(ctx, callerID, slotID, update)
}

func (m *mockSlotService) DeleteSlot(ctx context.Context, callerID, slotID uuid.UUID) error {
	return m.DeleteSlotFn(ctx, callerID, slotID)
}

type mockUserService struct {
	RegisterFn func(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	LoginFn    func(ctx context.Context, email, password string) (*service.AuthResult, error)
}

func (m *mockUserService) Register(ctx context.Context, name, email, password string) (*service.AuthResult, error) {
	return m.RegisterFn(ctx, name, email, password)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return m.LoginFn(ctx, email, password)
}

type mockNotificationServer struct {
	ServeFn func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

func (m *mockNotificationServer) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	return m.ServeFn(w, r, userID)
}
