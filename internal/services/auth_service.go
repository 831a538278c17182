package services

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/hoc-admin-api/internal/auth"
	"github.com/yukikurage/hoc-admin-api/internal/constants"
	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = apierrors.Conflict("Email already registered")
	ErrInvalidCredentials = apierrors.Auth(apierrors.ErrCodeInvalidCredentials, "Invalid email or password")
	ErrUserNotFound       = apierrors.NotFound("User not found")
	ErrTokenRejected      = apierrors.Auth(apierrors.ErrCodeInvalidToken, "Invalid or expired token")
)

// PasswordHasher is satisfied by *auth.Hasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
	CompareUnknown(plain string) error
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   *auth.Manager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, tokens *auth.Manager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// RegisterInput represents the required information to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// Register creates an account. Only the password hash is stored.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	var v fieldCheck
	email := v.email("email", input.Email)
	if len(input.Password) < constants.MinPasswordLength {
		v.add("password", "min", "6", "must be at least 6 characters")
	}
	role, ok := models.ParseRole(input.Role)
	if !ok {
		v.add("role", "oneof", "ADMIN AMMINISTRATORE RESPONSABILE OPERATORE", "must be one of ADMIN, AMMINISTRATORE, RESPONSABILE, OPERATORE")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.Internal("Failed to check email", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apierrors.Internal("Failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apierrors.Internal("Failed to create user", err)
	}

	return user, nil
}

// LoginResult is a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.hasher.CompareUnknown(password)
			return nil, ErrInvalidCredentials
		}
		return nil, apierrors.Internal("Failed to find user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apierrors.Internal("Failed to issue token", err)
	}

	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// VerifyToken checks a bearer token and returns its claims.
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrTokenRejected
	}
	return claims, nil
}

// Profile retrieves an account by ID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apierrors.Internal("Failed to find user", err)
	}
	return user, nil
}
