package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/store"
)

// UserService handles registration, authentication and admin management.
type UserService struct {
	store  store.Store
	logger zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(st store.Store, logger zerolog.Logger) *UserService {
	return &UserService{
		store:  st,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput contains the registration form fields.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Register creates a new user account.
//
// Against the file backend the password is hashed and stored locally, and
// the first registered user becomes an administrator. Against the cloud
// backend the account is created at the identity provider and only a
// profile document is stored.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" || input.PasswordConfirm == "" {
		return nil, ErrMissingFields
	}
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, ErrInvalidEmail
	}

	if !s.store.SupportsPasswordLogin() {
		return s.registerAtIdentityProvider(ctx, input)
	}

	if _, err := s.store.FindUserByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	count, err := s.store.UserCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, input.Email, string(hash))
	// The first registrant administers the instance.
	user.IsAdmin = count == 0

	if err := s.store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to save user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Bool("is_admin", user.IsAdmin).
		Msg("user registered")

	return user, nil
}

func (s *UserService) registerAtIdentityProvider(ctx context.Context, input RegisterInput) (*domain.User, error) {
	uid, err := s.store.CreateIdentityUser(ctx, input.Email, input.Password, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("identity registration failed")
		return nil, err
	}

	user := &domain.User{
		ID:           uid,
		Username:     input.Username,
		Email:        input.Email,
		Friends:      []string{},
		IsAdmin:      false,
		UserSettings: domain.DefaultUserSettings(),
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", uid).Str("username", input.Username).Msg("user registered at identity provider")
	return user, nil
}

// Authenticate verifies login credentials and returns the user.
//
// The password is checked against the stored hash only when the backend
// keeps credentials locally; for the cloud backend authentication already
// happened at the identity provider and only profile lookup occurs.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		// Log but don't expose whether the email exists.
		s.logger.Debug().Str("email", email).Msg("user not found during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	if s.store.SupportsPasswordLogin() {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			s.logger.Debug().Str("email", email).Msg("invalid password during authentication")
			return nil, domain.ErrInvalidCredentials
		}
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.GetAllUsers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// SetAdminStatus changes the admin flag of the target user on behalf of
// the acting administrator.
//
// An administrator cannot revoke their own admin status. On the first
// promotion the default admin settings block is attached; demotion never
// removes it. When the identity provider claim update fails, the local
// flag is rolled back to keep the two systems consistent.
func (s *UserService) SetAdminStatus(ctx context.Context, actorID, targetID string, isAdmin bool) (*domain.User, error) {
	if actorID == targetID && !isAdmin {
		return nil, domain.ErrSelfDemotion
	}

	user, err := s.store.GetUser(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return s.applyAdminStatus(ctx, user, isAdmin)
}

// PromoteByEmail promotes the user with the given email to administrator.
// Used by the promote-user API and the admin CLI.
func (s *UserService) PromoteByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return s.applyAdminStatus(ctx, user, true)
}

func (s *UserService) applyAdminStatus(ctx context.Context, user *domain.User, isAdmin bool) (*domain.User, error) {
	wasAdmin := user.IsAdmin
	user.IsAdmin = isAdmin
	if isAdmin && !wasAdmin {
		if domain.AttachDefaultAdminSettings(user) {
			s.logger.Info().Str("user_id", user.ID).Msg("attached default admin settings")
		}
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.store.SetAdminClaim(ctx, user.ID, isAdmin); err != nil {
		// Roll back the local flag so the document store and the
		// identity provider stay consistent.
		user.IsAdmin = wasAdmin
		if rbErr := s.store.SaveUser(ctx, user); rbErr != nil {
			s.logger.Error().Err(rbErr).Str("user_id", user.ID).Msg("rollback of admin flag failed")
		}
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to update admin claim")
		return nil, fmt.Errorf("failed to update identity provider claims: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Bool("is_admin", isAdmin).
		Msg("admin status updated")

	return user, nil
}
