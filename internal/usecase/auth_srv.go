package usecase

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/provider"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	// ExchangeSession resolves an opaque front-end session id through the
	// identity provider, creating the user on first sight, and stores a
	// session with a 7-day absolute expiry.
	ExchangeSession(ctx context.Context, sessionID string) (*response.SessionResponse, error)

	CurrentUser(ctx context.Context, userID string) (*response.UserResponse, error)
	Logout(ctx context.Context, token string) error
	SelectRole(ctx context.Context, userID string, req *request.SelectRoleRequest) (*response.SelectRoleResponse, error)
}

type authService struct {
	repo     *repository.Repository
	tx       TxRunner
	identity provider.Identity
	config   *utils.Config
	log      *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	tx TxRunner,
	identity provider.Identity,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		tx:       tx,
		identity: identity,
		config:   config,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) ExchangeSession(ctx context.Context, sessionID string) (*response.SessionResponse, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session ID", apperr.ErrValidation)
	}

	identity, err := s.identity.Exchange(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	isNewUser := false
	if user == nil {
		user, err = s.createUser(ctx, identity)
		if err != nil {
			return nil, err
		}
		isNewUser = true
	}

	now := time.Now()
	session := &entity.Session{
		ID:        utils.GenerateID(),
		UserID:    user.ID,
		Token:     identity.SessionToken,
		ExpiresAt: now.Add(time.Duration(s.config.Session.ExpiryDays) * 24 * time.Hour),
		CreatedAt: now,
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info("Session exchanged",
		zap.String("user_id", user.ID),
		zap.Bool("is_new_user", isNewUser),
	)

	return &response.SessionResponse{
		Success:   true,
		IsNewUser: isNewUser,
		Token:     session.Token,
	}, nil
}

// createUser inserts the new user inside a transaction with the count check,
// so the first-user-admin rule stays correct when two first sign-ins race.
func (s *authService) createUser(ctx context.Context, identity *provider.IdentityResult) (*entity.User, error) {
	user := &entity.User{
		ID:        utils.GenerateID(),
		Email:     identity.Email,
		Name:      identity.Name,
		Picture:   identity.Picture,
		CreatedAt: time.Now(),
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		count, err := s.repo.User.Count(ctx)
		if err != nil {
			return err
		}

		user.Role = entity.RoleAttendee
		if count == 0 {
			user.Role = entity.RoleAdmin
		}

		return s.repo.User.Create(ctx, user)
	})
	if err != nil {
		s.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", identity.Email),
		)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.repo.Session.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *authService) SelectRole(ctx context.Context, userID string, req *request.SelectRoleRequest) (*response.SelectRoleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Select role validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, utils.FormatValidationErrors(errs))
	}

	role := entity.UserRole(req.Role)
	if !role.Selectable() {
		return nil, fmt.Errorf("%w: role must be 'attendee' or 'organizer'", apperr.ErrValidation)
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}

	// The admin role is never shed this way, and the organizer upgrade is a
	// one-shot choice.
	if user.Role == entity.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot change admin role", apperr.ErrNotAuthorized)
	}
	if user.Role == entity.RoleOrganizer {
		return nil, fmt.Errorf("%w: role already selected", apperr.ErrConflict)
	}

	if err := s.repo.User.UpdateRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.log.Info("User role selected",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
	)

	return &response.SelectRoleResponse{Success: true, Role: string(role)}, nil
}
