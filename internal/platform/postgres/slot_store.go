package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/redact"
	"github.com/phrazzld/slotswap-api/internal/store"
)

const slotColumns = `id, owner_id, title, start_time, end_time, status, version, created_at, updated_at`

// PostgresSlotStore implements the store.SlotStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSlotStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSlotStore creates a new PostgreSQL implementation of the SlotStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSlotStore(db store.DBTX, logger *slog.Logger) *PostgresSlotStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSlotStore{
		db:     db,
		logger: logger.With(slog.String("component", "slot_store")),
	}
}

// Ensure PostgresSlotStore implements store.SlotStore interface
var _ store.SlotStore = (*PostgresSlotStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	var status string

	err := row.Scan(
		&slot.ID,
		&slot.OwnerID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&status,
		&slot.Version,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.Status = domain.SlotStatus(status)
	return &slot, nil
}

// Create implements store.SlotStore.Create
func (s *PostgresSlotStore) Create(ctx context.Context, slot *domain.Slot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := slot.Validate(); err != nil {
		log.Warn("slot validation failed during create",
			redact.Attr(err),
			slog.String("slot_id", slot.ID.String()))
		return store.NewStoreError("slot", "create", "validation failed",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	query := `
		INSERT INTO slots (` + slotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		slot.ID,
		slot.OwnerID,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		string(slot.Status),
		slot.Version,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create slot",
			redact.Attr(err),
			slog.String("slot_id", slot.ID.String()),
			slog.String("owner_id", slot.OwnerID.String()))
		return MapError(err)
	}

	log.Debug("slot created",
		slog.String("slot_id", slot.ID.String()),
		slog.String("status", string(slot.Status)))
	return nil
}

// GetByID implements store.SlotStore.GetByID
func (s *PostgresSlotStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	return s.get(ctx, id, false)
}

// GetByIDForUpdate implements store.SlotStore.GetByIDForUpdate
func (s *PostgresSlotStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresSlotStore) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Slot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	slot, err := scanSlot(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("slot not found", slog.String("slot_id", id.String()))
			return nil, store.ErrSlotNotFound
		}
		log.Error("failed to get slot by ID",
			redact.Attr(err),
			slog.String("slot_id", id.String()),
			slog.Bool("for_update", forUpdate))
		return nil, MapError(err)
	}

	return slot, nil
}

// Find implements store.SlotStore.Find
func (s *PostgresSlotStore) Find(ctx context.Context, filter store.SlotFilter) ([]*domain.Slot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return []*domain.Slot{}, nil
		}
		where = append(where, "id = ANY("+arg(uuidStrings(filter.IDs))+"::uuid[])")
	}
	if filter.OwnerID != uuid.Nil {
		where = append(where, "owner_id = "+arg(filter.OwnerID))
	}
	if filter.ExcludeOwnerID != uuid.Nil {
		where = append(where, "owner_id <> "+arg(filter.ExcludeOwnerID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}

	query := `SELECT ` + slotColumns + ` FROM slots`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_time ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query slots", redact.Attr(err))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	slots := []*domain.Slot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			log.Error("failed to scan slot row", redact.Attr(err))
			return nil, MapError(err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating slot rows", redact.Attr(err))
		return nil, MapError(err)
	}

	return slots, nil
}

// Update implements store.SlotStore.Update
func (s *PostgresSlotStore) Update(ctx context.Context, id uuid.UUID, patch store.SlotPatch) (*domain.Slot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var sets []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Title != nil {
		sets = append(sets, "title = "+arg(*patch.Title))
	}
	if patch.StartTime != nil {
		sets = append(sets, "start_time = "+arg(patch.StartTime.UTC()))
	}
	if patch.EndTime != nil {
		sets = append(sets, "end_time = "+arg(patch.EndTime.UTC()))
	}
	if patch.OwnerID != nil {
		sets = append(sets, "owner_id = "+arg(*patch.OwnerID))
	}
	if patch.Status != nil {
		sets = append(sets, "status = "+arg(string(*patch.Status)))
	}
	sets = append(sets, "version = version + 1", "updated_at = "+arg(time.Now().UTC()))

	query := `UPDATE slots SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + arg(id)
	if patch.ExpectStatus != nil {
		query += ` AND status = ` + arg(string(*patch.ExpectStatus))
	}
	query += ` RETURNING ` + slotColumns

	slot, err := scanSlot(s.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		log.Debug("slot updated",
			slog.String("slot_id", id.String()),
			slog.String("status", string(slot.Status)),
			slog.Int64("version", slot.Version))
		return slot, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to update slot",
			redact.Attr(err),
			slog.String("slot_id", id.String()))
		return nil, MapError(err)
	}

	if patch.ExpectStatus == nil {
		return nil, store.ErrSlotNotFound
	}

	// Zero rows with a guard: either the slot is gone or its status moved.
	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}

	log.Debug("slot status guard failed",
		slog.String("slot_id", id.String()),
		slog.String("expected_status", string(*patch.ExpectStatus)))
	return nil, fmt.Errorf("%w: slot %s is no longer %s", store.ErrStaleState, id, *patch.ExpectStatus)
}

// Delete implements store.SlotStore.Delete
func (s *PostgresSlotStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete slot",
			redact.Attr(err),
			slog.String("slot_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrSlotNotFound); err != nil {
		return err
	}

	log.Debug("slot deleted", slog.String("slot_id", id.String()))
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
