package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/redact"
	"github.com/phrazzld/slotswap-api/internal/service/auth"
	"github.com/phrazzld/slotswap-api/internal/store"
)

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// UserService registers users and exchanges credentials for tokens.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type userServiceImpl struct {
	tx     store.Transactor
	hasher auth.PasswordHasher
	tokens auth.JWTService
	logger *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService.
// It returns an error if any required dependency is nil.
func NewUserService(
	tx store.Transactor,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	logger *slog.Logger,
) (UserService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		tx:     tx,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	const op = "register"
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, translateError(op, err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", redact.Attr(err))
		return nil, NewSwapServiceError(op, "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		return st.Users.Create(ctx, user)
	}); err != nil {
		err = translateError(op, err)
		if KindOf(err) == KindInternal {
			log.Error("failed to create user", redact.Attr(err))
		}
		return nil, err
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		log.Error("failed to generate token", redact.Attr(err))
		return nil, NewSwapServiceError(op, "failed to generate token", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return &AuthResult{User: user, Token: token}, nil
}

func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "login"
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.tx.Stores().Users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, NewSwapServiceError(op, "unknown email", ErrInvalidCredentials)
		}
		return nil, translateError(op, err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, NewSwapServiceError(op, "password mismatch", ErrInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		log.Error("failed to generate token", redact.Attr(err))
		return nil, NewSwapServiceError(op, "failed to generate token", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}
