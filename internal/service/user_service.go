package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nestflow/internal/auth"
	"nestflow/internal/domain"
	"nestflow/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo       domain.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zerolog.Logger
}

func NewUserService(repo domain.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     orNop(logger),
	}
}

// Register creates an account; an empty role means guest.
func (s *UserService) Register(ctx context.Context, username, email, password, role string) (*models.Session, error) {
	if role == "" {
		role = models.RoleGuest
	}
	if role != models.RoleGuest && role != models.RoleHost {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Str("role", role).Msg("User registered")

	return s.session(user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *UserService) UpdateProfile(ctx context.Context, user models.AuthenticatedUser, username, email string, bio *string) (*models.User, error) {
	return s.repo.UpdateUserProfile(ctx, user.ID, strings.TrimSpace(username), normalizeEmail(email), bio)
}

func (s *UserService) UpdateAvatar(ctx context.Context, user models.AuthenticatedUser, avatarURL string) (*models.User, error) {
	return s.repo.UpdateUserAvatar(ctx, user.ID, strings.TrimSpace(avatarURL))
}

func (s *UserService) Authenticate(token string) (models.AuthenticatedUser, error) {
	return s.tokens.Parse(token)
}

func (s *UserService) session(user *models.User) (*models.Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
