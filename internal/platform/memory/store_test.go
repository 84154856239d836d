package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser("User", email, "password123")
	require.NoError(t, err)
	user.HashedPassword = "hash"
	require.NoError(t, s.Stores().Users.Create(context.Background(), user))
	return user
}

func seedSlot(t *testing.T, s *Store, owner uuid.UUID, start time.Time, status domain.SlotStatus) *domain.Slot {
	t.Helper()
	slot, err := domain.NewSlot(owner, "slot", start, start.Add(time.Hour), status)
	require.NoError(t, err)
	require.NoError(t, s.Stores().Slots.Create(context.Background(), slot))
	return slot
}

func TestSlotStore_CRUD(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	slot := seedSlot(t, s, owner.ID, time.Now().UTC(), domain.SlotStatusBusy)

	got, err := s.Stores().Slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, *slot, *got)

	// Returned values do not alias stored state.
	got.Title = "mutated"
	again, err := s.Stores().Slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "slot", again.Title)

	title := "renamed"
	updated, err := s.Stores().Slots.Update(ctx, slot.ID, store.SlotPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, slot.Version+1, updated.Version)

	require.NoError(t, s.Stores().Slots.Delete(ctx, slot.ID))
	_, err = s.Stores().Slots.GetByID(ctx, slot.ID)
	assert.ErrorIs(t, err, store.ErrSlotNotFound)
	assert.ErrorIs(t, s.Stores().Slots.Delete(ctx, slot.ID), store.ErrSlotNotFound)
}

func TestSlotStore_CreateRequiresOwner(t *testing.T) {
	s := NewStore(nil)
	slot, err := domain.NewSlot(uuid.New(), "orphan", time.Now(), time.Now().Add(time.Hour), "")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Stores().Slots.Create(context.Background(), slot), store.ErrInvalidEntity)
}

func TestSlotStore_UpdateGuard(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	slot := seedSlot(t, s, owner.ID, time.Now().UTC(), domain.SlotStatusBusy)

	_, err := s.Stores().Slots.Update(ctx, slot.ID, store.SlotPatch{
		Status:       store.StatusPtr(domain.SlotStatusSwapPending),
		ExpectStatus: store.StatusPtr(domain.SlotStatusSwappable),
	})
	assert.ErrorIs(t, err, store.ErrStaleState)

	unchanged, err := s.Stores().Slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, *slot, *unchanged)

	_, err = s.Stores().Slots.Update(ctx, uuid.New(), store.SlotPatch{})
	assert.ErrorIs(t, err, store.ErrSlotNotFound)

	end := slot.StartTime.Add(-time.Hour)
	_, err = s.Stores().Slots.Update(ctx, slot.ID, store.SlotPatch{EndTime: &end})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestSlotStore_FindFilterAndOrder(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	late := seedSlot(t, s, bob.ID, base.Add(48*time.Hour), domain.SlotStatusSwappable)
	early := seedSlot(t, s, bob.ID, base, domain.SlotStatusSwappable)
	seedSlot(t, s, bob.ID, base.Add(time.Hour), domain.SlotStatusBusy)
	seedSlot(t, s, alice.ID, base, domain.SlotStatusSwappable)

	slots, err := s.Stores().Slots.Find(ctx, store.SlotFilter{
		ExcludeOwnerID: alice.ID,
		Status:         domain.SlotStatusSwappable,
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, early.ID, slots[0].ID)
	assert.Equal(t, late.ID, slots[1].ID)

	byOwner, err := s.Stores().Slots.Find(ctx, store.SlotFilter{OwnerID: bob.ID})
	require.NoError(t, err)
	assert.Len(t, byOwner, 3)

	byIDs, err := s.Stores().Slots.Find(ctx, store.SlotFilter{IDs: []uuid.UUID{late.ID, uuid.New()}})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	none, err := s.Stores().Slots.Find(ctx, store.SlotFilter{IDs: []uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSwapStore_PendingUniquenessAndResolve(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	carol := seedUser(t, s, "carol@example.com")
	now := time.Now().UTC()
	a := seedSlot(t, s, alice.ID, now, domain.SlotStatusSwappable)
	b := seedSlot(t, s, bob.ID, now, domain.SlotStatusSwappable)
	c := seedSlot(t, s, carol.ID, now, domain.SlotStatusSwappable)

	first, err := domain.NewSwapRequest(alice.ID, a, b)
	require.NoError(t, err)
	require.NoError(t, s.Stores().Swaps.Create(ctx, first))

	second, err := domain.NewSwapRequest(carol.ID, c, b)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Stores().Swaps.Create(ctx, second), store.ErrPendingRequestExists)

	resolved, err := s.Stores().Swaps.Resolve(ctx, first.ID, domain.SwapStatusAccepted, now)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusAccepted, resolved.Status)
	require.NotNil(t, resolved.RespondedAt)

	_, err = s.Stores().Swaps.Resolve(ctx, first.ID, domain.SwapStatusRejected, now)
	assert.ErrorIs(t, err, store.ErrStaleState)

	_, err = s.Stores().Swaps.Resolve(ctx, uuid.New(), domain.SwapStatusRejected, now)
	assert.ErrorIs(t, err, store.ErrSwapRequestNotFound)

	_, err = s.Stores().Swaps.Resolve(ctx, first.ID, domain.SwapStatusPending, now)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	second.CreatedAt = now.Add(time.Second)
	require.NoError(t, s.Stores().Swaps.Create(ctx, second))

	incoming, err := s.Stores().Swaps.Find(ctx, store.SwapFilter{ReceiverID: bob.ID})
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, second.ID, incoming[0].ID, "newest first")

	bySlot, err := s.Stores().Swaps.Find(ctx, store.SwapFilter{SlotID: a.ID})
	require.NoError(t, err)
	assert.Len(t, bySlot, 1)

	pending, err := s.Stores().Swaps.Find(ctx, store.SwapFilter{Status: domain.SwapStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestUserStore(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	alice := seedUser(t, s, "Alice@Example.com")

	got, err := s.Stores().Users.GetByEmail(ctx, "alice@example.COM")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Empty(t, got.Password)

	dup, err := domain.NewUser("Other", "alice@example.com", "password123")
	require.NoError(t, err)
	dup.HashedPassword = "hash"
	assert.ErrorIs(t, s.Stores().Users.Create(ctx, dup), store.ErrEmailExists)

	noHash, err := domain.NewUser("NoHash", "nohash@example.com", "password123")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Stores().Users.Create(ctx, noHash), store.ErrInvalidEntity)

	_, err = s.Stores().Users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	users, err := s.Stores().Users.GetByIDs(ctx, []uuid.UUID{alice.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestInTx_CommitAndRollback(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	slot := seedSlot(t, s, owner.ID, time.Now().UTC(), domain.SlotStatusSwappable)

	err := s.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		_, err := tx.Slots.Update(ctx, slot.ID, store.SlotPatch{Status: store.StatusPtr(domain.SlotStatusSwapPending)})
		return err
	})
	require.NoError(t, err)

	committed, err := s.Stores().Slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotStatusSwapPending, committed.Status)

	boom := errors.New("boom")
	err = s.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if _, err := tx.Slots.Update(ctx, slot.ID, store.SlotPatch{Status: store.StatusPtr(domain.SlotStatusBusy)}); err != nil {
			return err
		}
		if err := tx.Slots.Delete(ctx, slot.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	restored, err := s.Stores().Slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, *committed, *restored)
}

func TestInTx_PanicRollsBack(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	slot := seedSlot(t, s, owner.ID, time.Now().UTC(), domain.SlotStatusBusy)

	assert.Panics(t, func() {
		_ = s.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
			_ = tx.Slots.Delete(ctx, slot.ID)
			panic("boom")
		})
	})

	_, err := s.Stores().Slots.GetByID(ctx, slot.ID)
	assert.NoError(t, err)
}

func TestInTx_CancelledContext(t *testing.T) {
	s := NewStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
