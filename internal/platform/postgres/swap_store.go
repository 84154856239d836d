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

const swapColumns = `id, requester_id, receiver_id, offered_slot_id, target_slot_id, status, created_at, responded_at`

// PostgresSwapRequestStore implements the store.SwapRequestStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSwapRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSwapRequestStore creates a new PostgreSQL implementation of the SwapRequestStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSwapRequestStore(db store.DBTX, logger *slog.Logger) *PostgresSwapRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSwapRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "swap_request_store")),
	}
}

// Ensure PostgresSwapRequestStore implements store.SwapRequestStore interface
var _ store.SwapRequestStore = (*PostgresSwapRequestStore)(nil)

func scanSwapRequest(row rowScanner) (*domain.SwapRequest, error) {
	var req domain.SwapRequest
	var status string
	var respondedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.ReceiverID,
		&req.OfferedSlotID,
		&req.TargetSlotID,
		&status,
		&req.CreatedAt,
		&respondedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = domain.SwapStatus(status)
	if respondedAt.Valid {
		t := respondedAt.Time.UTC()
		req.RespondedAt = &t
	}
	return &req, nil
}

// Create implements store.SwapRequestStore.Create
// The partial unique indexes on pending requests turn a concurrent second
// proposal on the same slot into store.ErrPendingRequestExists.
func (s *PostgresSwapRequestStore) Create(ctx context.Context, req *domain.SwapRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		log.Warn("swap request validation failed during create",
			redact.Attr(err),
			slog.String("request_id", req.ID.String()))
		return store.NewStoreError("swap_request", "create", "validation failed",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	var respondedAt sql.NullTime
	if req.RespondedAt != nil {
		respondedAt = sql.NullTime{Time: *req.RespondedAt, Valid: true}
	}

	query := `
		INSERT INTO swap_requests (` + swapColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		req.ID,
		req.RequesterID,
		req.ReceiverID,
		req.OfferedSlotID,
		req.TargetSlotID,
		string(req.Status),
		req.CreatedAt,
		respondedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrPendingRequestExists) {
			log.Warn("slot already has a pending swap request",
				slog.String("offered_slot_id", req.OfferedSlotID.String()),
				slog.String("target_slot_id", req.TargetSlotID.String()))
			return mapped
		}
		log.Error("failed to create swap request",
			redact.Attr(err),
			slog.String("request_id", req.ID.String()))
		return mapped
	}

	log.Debug("swap request created", slog.String("request_id", req.ID.String()))
	return nil
}

// GetByID implements store.SwapRequestStore.GetByID
func (s *PostgresSwapRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SwapRequest, error) {
	return s.get(ctx, id, false)
}

// GetByIDForUpdate implements store.SwapRequestStore.GetByIDForUpdate
func (s *PostgresSwapRequestStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.SwapRequest, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresSwapRequestStore) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.SwapRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	req, err := scanSwapRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("swap request not found", slog.String("request_id", id.String()))
			return nil, store.ErrSwapRequestNotFound
		}
		log.Error("failed to get swap request by ID",
			redact.Attr(err),
			slog.String("request_id", id.String()))
		return nil, MapError(err)
	}

	return req, nil
}

// Find implements store.SwapRequestStore.Find
func (s *PostgresSwapRequestStore) Find(ctx context.Context, filter store.SwapFilter) ([]*domain.SwapRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.RequesterID != uuid.Nil {
		where = append(where, "requester_id = "+arg(filter.RequesterID))
	}
	if filter.ReceiverID != uuid.Nil {
		where = append(where, "receiver_id = "+arg(filter.ReceiverID))
	}
	if filter.SlotID != uuid.Nil {
		p := arg(filter.SlotID)
		where = append(where, "(offered_slot_id = "+p+" OR target_slot_id = "+p+")")
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}

	query := `SELECT ` + swapColumns + ` FROM swap_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query swap requests", redact.Attr(err))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	reqs := []*domain.SwapRequest{}
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			log.Error("failed to scan swap request row", redact.Attr(err))
			return nil, MapError(err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return reqs, nil
}

// Resolve implements store.SwapRequestStore.Resolve
func (s *PostgresSwapRequestStore) Resolve(
	ctx context.Context,
	id uuid.UUID,
	status domain.SwapStatus,
	respondedAt time.Time,
) (*domain.SwapRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot resolve to status %q", store.ErrInvalidEntity, status)
	}

	query := `
		UPDATE swap_requests
		SET status = $1, responded_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + swapColumns

	req, err := scanSwapRequest(s.db.QueryRowContext(
		ctx,
		query,
		string(status),
		respondedAt.UTC(),
		id,
		string(domain.SwapStatusPending),
	))
	if err == nil {
		log.Debug("swap request resolved",
			slog.String("request_id", id.String()),
			slog.String("status", string(status)))
		return req, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to resolve swap request",
			redact.Attr(err),
			slog.String("request_id", id.String()))
		return nil, MapError(err)
	}

	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: swap request %s is no longer pending", store.ErrStaleState, id)
}
