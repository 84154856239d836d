package memory

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/store"
)

// state is the full dataset. Values are stored by value so callers never
// alias stored records.
type state struct {
	slots  map[uuid.UUID]domain.Slot
	swaps  map[uuid.UUID]domain.SwapRequest
	users  map[uuid.UUID]domain.User
	emails map[string]uuid.UUID
}

func newState() *state {
	return &state{
		slots:  make(map[uuid.UUID]domain.Slot),
		swaps:  make(map[uuid.UUID]domain.SwapRequest),
		users:  make(map[uuid.UUID]domain.User),
		emails: make(map[string]uuid.UUID),
	}
}

func (s *state) clone() *state {
	c := &state{
		slots:  make(map[uuid.UUID]domain.Slot, len(s.slots)),
		swaps:  make(map[uuid.UUID]domain.SwapRequest, len(s.swaps)),
		users:  make(map[uuid.UUID]domain.User, len(s.users)),
		emails: make(map[string]uuid.UUID, len(s.emails)),
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.swaps {
		if v.RespondedAt != nil {
			t := *v.RespondedAt
			v.RespondedAt = &t
		}
		c.swaps[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	return c
}

// Store is an in-memory implementation of store.Transactor.
type Store struct {
	mu     sync.RWMutex
	st     *state
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates an empty in-memory store.
// If logger is nil, a default logger will be used.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		st:     newState(),
		logger: logger.With(slog.String("component", "memory_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure Store implements store.Transactor interface
var _ store.Transactor = (*Store)(nil)

// InTx implements store.Transactor.InTx
func (s *Store) InTx(ctx context.Context, fn store.UnitOfWork) (err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
			panic(p)
		}
		if err != nil {
			s.st = snapshot
			log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		}
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	}

	return fn(ctx, s.stores(true))
}

// Stores implements store.Transactor.Stores
func (s *Store) Stores() store.Stores {
	return s.stores(false)
}

func (s *Store) stores(inTx bool) store.Stores {
	return store.Stores{
		Slots: &slotStore{db: s, inTx: inTx},
		Swaps: &swapStore{db: s, inTx: inTx},
		Users: &userStore{db: s, inTx: inTx},
	}
}

// read runs fn against the current state. Inside a unit of work the write
// lock is already held.
func (s *Store) read(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

func (s *Store) write(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

func lessUUID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

type slotStore struct {
	db   *Store
	inTx bool
}

var _ store.SlotStore = (*slotStore)(nil)

func (s *slotStore) Create(ctx context.Context, slot *domain.Slot) error {
	if err := slot.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.db.write(s.inTx, func(st *state) error {
		if _, ok := st.slots[slot.ID]; ok {
			return fmt.Errorf("%w: slot %s", store.ErrDuplicate, slot.ID)
		}
		if _, ok := st.users[slot.OwnerID]; !ok {
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, slot.OwnerID)
		}
		st.slots[slot.ID] = *slot
		return nil
	})
}

func (s *slotStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	var out *domain.Slot
	err := s.db.read(s.inTx, func(st *state) error {
		slot, ok := st.slots[id]
		if !ok {
			return store.ErrSlotNotFound
		}
		out = &slot
		return nil
	})
	return out, err
}

// GetByIDForUpdate is GetByID: a unit of work already excludes all others.
func (s *slotStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	return s.GetByID(ctx, id)
}

func (s *slotStore) Find(ctx context.Context, filter store.SlotFilter) ([]*domain.Slot, error) {
	out := []*domain.Slot{}
	err := s.db.read(s.inTx, func(st *state) error {
		var ids map[uuid.UUID]bool
		if filter.IDs != nil {
			ids = make(map[uuid.UUID]bool, len(filter.IDs))
			for _, id := range filter.IDs {
				ids[id] = true
			}
		}
		for _, slot := range st.slots {
			if ids != nil && !ids[slot.ID] {
				continue
			}
			if filter.OwnerID != uuid.Nil && slot.OwnerID != filter.OwnerID {
				continue
			}
			if filter.ExcludeOwnerID != uuid.Nil && slot.OwnerID == filter.ExcludeOwnerID {
				continue
			}
			if filter.Status != "" && slot.Status != filter.Status {
				continue
			}
			slot := slot
			out = append(out, &slot)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return lessUUID(out[i].ID, out[j].ID)
	})
	return out, err
}

func (s *slotStore) Update(ctx context.Context, id uuid.UUID, patch store.SlotPatch) (*domain.Slot, error) {
	var out *domain.Slot
	err := s.db.write(s.inTx, func(st *state) error {
		slot, ok := st.slots[id]
		if !ok {
			return store.ErrSlotNotFound
		}
		if patch.ExpectStatus != nil && slot.Status != *patch.ExpectStatus {
			return fmt.Errorf("%w: slot %s is no longer %s", store.ErrStaleState, id, *patch.ExpectStatus)
		}

		if patch.Title != nil {
			slot.Title = *patch.Title
		}
		if patch.StartTime != nil {
			slot.StartTime = patch.StartTime.UTC()
		}
		if patch.EndTime != nil {
			slot.EndTime = patch.EndTime.UTC()
		}
		if patch.OwnerID != nil {
			slot.OwnerID = *patch.OwnerID
		}
		if patch.Status != nil {
			slot.Status = *patch.Status
		}
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}

		slot.Version++
		slot.UpdatedAt = s.db.now()
		st.slots[id] = slot
		out = &slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *slotStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.write(s.inTx, func(st *state) error {
		if _, ok := st.slots[id]; !ok {
			return store.ErrSlotNotFound
		}
		delete(st.slots, id)
		return nil
	})
}

type swapStore struct {
	db   *Store
	inTx bool
}

var _ store.SwapRequestStore = (*swapStore)(nil)

func (s *swapStore) Create(ctx context.Context, req *domain.SwapRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.db.write(s.inTx, func(st *state) error {
		if _, ok := st.swaps[req.ID]; ok {
			return fmt.Errorf("%w: swap request %s", store.ErrDuplicate, req.ID)
		}
		for _, existing := range st.swaps {
			if existing.Status != domain.SwapStatusPending {
				continue
			}
			if existing.OfferedSlotID == req.OfferedSlotID || existing.TargetSlotID == req.TargetSlotID {
				return store.ErrPendingRequestExists
			}
		}
		stored := *req
		if req.RespondedAt != nil {
			t := *req.RespondedAt
			stored.RespondedAt = &t
		}
		st.swaps[req.ID] = stored
		return nil
	})
}

func (s *swapStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SwapRequest, error) {
	var out *domain.SwapRequest
	err := s.db.read(s.inTx, func(st *state) error {
		req, ok := st.swaps[id]
		if !ok {
			return store.ErrSwapRequestNotFound
		}
		out = copySwap(req)
		return nil
	})
	return out, err
}

func (s *swapStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.SwapRequest, error) {
	return s.GetByID(ctx, id)
}

func (s *swapStore) Find(ctx context.Context, filter store.SwapFilter) ([]*domain.SwapRequest, error) {
	out := []*domain.SwapRequest{}
	err := s.db.read(s.inTx, func(st *state) error {
		for _, req := range st.swaps {
			if filter.RequesterID != uuid.Nil && req.RequesterID != filter.RequesterID {
				continue
			}
			if filter.ReceiverID != uuid.Nil && req.ReceiverID != filter.ReceiverID {
				continue
			}
			if filter.SlotID != uuid.Nil && req.OfferedSlotID != filter.SlotID && req.TargetSlotID != filter.SlotID {
				continue
			}
			if filter.Status != "" && req.Status != filter.Status {
				continue
			}
			out = append(out, copySwap(req))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return lessUUID(out[j].ID, out[i].ID)
	})
	return out, err
}

func (s *swapStore) Resolve(
	ctx context.Context,
	id uuid.UUID,
	status domain.SwapStatus,
	respondedAt time.Time,
) (*domain.SwapRequest, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot resolve to status %q", store.ErrInvalidEntity, status)
	}
	var out *domain.SwapRequest
	err := s.db.write(s.inTx, func(st *state) error {
		req, ok := st.swaps[id]
		if !ok {
			return store.ErrSwapRequestNotFound
		}
		if req.Status != domain.SwapStatusPending {
			return fmt.Errorf("%w: swap request %s is no longer pending", store.ErrStaleState, id)
		}
		t := respondedAt.UTC()
		req.Status = status
		req.RespondedAt = &t
		st.swaps[id] = req
		out = copySwap(req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func copySwap(req domain.SwapRequest) *domain.SwapRequest {
	if req.RespondedAt != nil {
		t := *req.RespondedAt
		req.RespondedAt = &t
	}
	return &req
}

type userStore struct {
	db   *Store
	inTx bool
}

var _ store.UserStore = (*userStore)(nil)

func (s *userStore) Create(ctx context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: hashed password is required", store.ErrInvalidEntity)
	}
	email := domain.NormalizeEmail(user.Email)
	return s.db.write(s.inTx, func(st *state) error {
		if _, ok := st.emails[email]; ok {
			return store.ErrEmailExists
		}
		if _, ok := st.users[user.ID]; ok {
			return fmt.Errorf("%w: user %s", store.ErrDuplicate, user.ID)
		}
		stored := *user
		stored.Email = email
		stored.Password = ""
		st.users[user.ID] = stored
		st.emails[email] = user.ID
		return nil
	})
}

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := s.db.read(s.inTx, func(st *state) error {
		user, ok := st.users[id]
		if !ok {
			return store.ErrUserNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := s.db.read(s.inTx, func(st *state) error {
		id, ok := st.emails[domain.NormalizeEmail(email)]
		if !ok {
			return store.ErrUserNotFound
		}
		user := st.users[id]
		out = &user
		return nil
	})
	return out, err
}

func (s *userStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	out := make(map[uuid.UUID]*domain.User, len(ids))
	err := s.db.read(s.inTx, func(st *state) error {
		for _, id := range ids {
			if user, ok := st.users[id]; ok {
				user := user
				out[id] = &user
			}
		}
		return nil
	})
	return out, err
}
