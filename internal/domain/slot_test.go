package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	all := []SlotStatus{SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending}
	legal := map[[2]SlotStatus]bool{
		{SlotStatusBusy, SlotStatusSwappable}:        true,
		{SlotStatusSwappable, SlotStatusSwapPending}: true,
		{SlotStatusSwapPending, SlotStatusSwappable}: true,
		{SlotStatusSwapPending, SlotStatusBusy}:      true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]SlotStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.False(t, CanTransition("UNKNOWN", SlotStatusBusy))
	assert.False(t, CanTransition(SlotStatusBusy, "UNKNOWN"))
}

func TestNewSlot(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name      string
		ownerID   uuid.UUID
		title     string
		start     time.Time
		end       time.Time
		status    SlotStatus
		wantField string
	}{
		{name: "valid busy", ownerID: owner, title: "Standup", start: start, end: end, status: SlotStatusBusy},
		{name: "default status", ownerID: owner, title: "Standup", start: start, end: end},
		{name: "swappable", ownerID: owner, title: "Standup", start: start, end: end, status: SlotStatusSwappable},
		{name: "nil owner", ownerID: uuid.Nil, title: "x", start: start, end: end, wantField: "owner_id"},
		{name: "blank title", ownerID: owner, title: "   ", start: start, end: end, wantField: "title"},
		{name: "long title", ownerID: owner, title: strings.Repeat("a", MaxSlotTitleLength+1), start: start, end: end, wantField: "title"},
		{name: "end before start", ownerID: owner, title: "x", start: end, end: start, wantField: "end_time"},
		{name: "zero length", ownerID: owner, title: "x", start: start, end: start, wantField: "end_time"},
		{name: "missing times", ownerID: owner, title: "x", wantField: "start_time"},
		{name: "unknown status", ownerID: owner, title: "x", start: start, end: end, status: "LATER", wantField: "status"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			slot, err := NewSlot(tc.ownerID, tc.title, tc.start, tc.end, tc.status)
			if tc.wantField != "" {
				require.Error(t, err)
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tc.wantField, verr.Field)
				assert.Nil(t, slot)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, slot.ID)
			assert.Equal(t, tc.ownerID, slot.OwnerID)
			assert.Equal(t, int64(1), slot.Version)
			if tc.status == "" {
				assert.Equal(t, SlotStatusBusy, slot.Status)
			} else {
				assert.Equal(t, tc.status, slot.Status)
			}
			assert.False(t, slot.CreatedAt.IsZero())
			assert.True(t, slot.OwnedBy(tc.ownerID))
			assert.False(t, slot.OwnedBy(uuid.New()))
		})
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewValidationError("title", "cannot be empty", ErrValidation)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "title cannot be empty", err.Error())
}
