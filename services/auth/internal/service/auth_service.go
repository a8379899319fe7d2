package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/logging"
	outboxDomain "github.com/sarmatovd/shop-services/pkg/outbox/domain"
	"github.com/sarmatovd/shop-services/pkg/outbox/worker"
	"github.com/sarmatovd/shop-services/pkg/tokens"
	authDomain "github.com/sarmatovd/shop-services/services/auth/internal/domain"
	"github.com/sarmatovd/shop-services/services/auth/internal/repository"
	"github.com/sarmatovd/shop-services/services/auth/pkg/validator"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrWrongPassword = errors.New("wrong password")

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*authDomain.User, string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	outboxRepo worker.OutboxRepository
	logger     *zap.Logger
	pool       *pgxpool.Pool
	validator  validator.Validator
}

func NewAuthService(
	userRepo repository.UserRepository,
	outboxRepo worker.OutboxRepository,
	logger *zap.Logger,
	pool *pgxpool.Pool,
	validator validator.Validator,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
		pool:       pool,
		validator:  validator,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*authDomain.User, string, error) {
	if err := s.validator.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.Error(err),
		)

		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error beginning transaction",
			zap.Error(err),
		)

		return nil, "", err
	}

	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(shutdownCtx); err != nil {
			logging.Error(ctx, s.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	user := &authDomain.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPass),
	}

	user, err = s.userRepo.Create(ctx, tx, user)
	if err != nil {
		return nil, "", err
	}

	eventPayload := domain.UserRegisteredEvent{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}

	payloadBytes, _ := json.Marshal(eventPayload)
	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "User",
		AggregateID:   fmt.Sprintf("%d", user.ID),
		EventType:     "UserRegistered",
		Payload:       payloadBytes,
		Topic:         domain.UserEventsTopic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error saving outbox event",
			zap.Error(err),
		)

		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit transaction failed: %w", err)
	}

	token, err := tokens.GenerateToken(user.Name, user.Email)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error generating token",
			zap.Error(err),
		)

		return nil, "", fmt.Errorf("error generating token: %w", err)
	}

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Wrong password",
			zap.String("email", email),
		)

		return "", ErrWrongPassword
	}

	token, err := tokens.GenerateToken(user.Name, user.Email)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	return token, nil
}
