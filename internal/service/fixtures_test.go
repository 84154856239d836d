package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/events"
	"github.com/phrazzld/slotswap-api/internal/platform/memory"
	"github.com/phrazzld/slotswap-api/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.SwapEvent
	err    error
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.SwapEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	t       *testing.T
	db      *memory.Store
	emitter *recordingEmitter
	swaps   SwapService
	slots   SlotService
	start   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewStore(discardLogger())
	emitter := &recordingEmitter{}

	swaps, err := NewSwapService(db, emitter, discardLogger())
	require.NoError(t, err)
	slots, err := NewSlotService(db, discardLogger())
	require.NoError(t, err)

	return &fixture{
		t:       t,
		db:      db,
		emitter: emitter,
		swaps:   swaps,
		slots:   slots,
		start:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) user(name string) uuid.UUID {
	f.t.Helper()
	u, err := domain.NewUser(name, name+"@example.com", "password123")
	require.NoError(f.t, err)
	u.HashedPassword = "hashed"
	u.Password = ""
	require.NoError(f.t, f.db.InTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		return st.Users.Create(ctx, u)
	}))
	return u.ID
}

// slot creates a slot directly in the store, bypassing owner restrictions.
func (f *fixture) slot(owner uuid.UUID, status domain.SlotStatus) *domain.Slot {
	f.t.Helper()
	f.start = f.start.Add(time.Hour)
	s, err := domain.NewSlot(owner, "Standup", f.start, f.start.Add(30*time.Minute), domain.SlotStatusBusy)
	require.NoError(f.t, err)
	s.Status = status
	require.NoError(f.t, f.db.InTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		return st.Slots.Create(ctx, s)
	}))
	return s
}

func (f *fixture) get(id uuid.UUID) *domain.Slot {
	f.t.Helper()
	s, err := f.db.Stores().Slots.GetByID(context.Background(), id)
	require.NoError(f.t, err)
	return s
}

func (f *fixture) request(id uuid.UUID) *domain.SwapRequest {
	f.t.Helper()
	r, err := f.db.Stores().Swaps.GetByID(context.Background(), id)
	require.NoError(f.t, err)
	return r
}

func (f *fixture) allRequests() []*domain.SwapRequest {
	f.t.Helper()
	rs, err := f.db.Stores().Swaps.Find(context.Background(), store.SwapFilter{})
	require.NoError(f.t, err)
	return rs
}
