package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookerapp/booker-server/internal/auth"
	"github.com/bookerapp/booker-server/internal/domain"
	domainerrors "github.com/bookerapp/booker-server/internal/errors"
	"github.com/bookerapp/booker-server/internal/id"
	"github.com/bookerapp/booker-server/internal/normalize"
	"github.com/bookerapp/booker-server/internal/store"
	"github.com/bookerapp/booker-server/internal/validation"
)

// Authentication failure messages, as existing clients expect them.
const (
	MsgNoToken            = "Not authorized, no token provided"
	MsgTokenInvalid       = "Not authorized, token invalid"
	MsgUserNotFound       = "User not found"
	MsgInvalidCredentials = "Invalid email or password"
	msgEmailInUse         = "Email already in use"
)

// AuthService handles signup, login and bearer token verification.
type AuthService struct {
	store     *store.Store
	tokens    auth.TokenIssuer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(s *store.Store, tokens auth.TokenIssuer, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{store: s, tokens: tokens, validator: v, logger: logger}
}

// SignupRequest contains new account data.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *domain.User
	Token string
}

// Profile is the caller's account with their books and reviews, newest first.
type Profile struct {
	User    *domain.User
	Books   []*domain.Book
	Reviews []*domain.Review
}

// Signup creates an account and returns it with a fresh token.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Name = normalize.Text(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.Duplicate(msgEmailInUse)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.info("User signed up", "user_id", user.ID)

	return &AuthResponse{User: user, Token: token}, nil
}

// Login checks credentials and returns the user with a fresh token. Unknown
// emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, domainerrors.InvalidCredentials(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials(MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// VerifyToken turns a bearer token into the caller's identity.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (domain.AuthenticatedIdentity, error) {
	if token == "" {
		return domain.AuthenticatedIdentity{}, domainerrors.Unauthorized(MsgNoToken)
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.AuthenticatedIdentity{}, domainerrors.Unauthorized(MsgTokenInvalid).WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		return domain.AuthenticatedIdentity{}, domainerrors.Unauthorized(MsgUserNotFound)
	}
	if err != nil {
		return domain.AuthenticatedIdentity{}, fmt.Errorf("load token user: %w", err)
	}

	return domain.IdentityOf(user), nil
}

// Profile returns the caller's account, books and reviews.
func (s *AuthService) Profile(ctx context.Context, identity domain.AuthenticatedIdentity) (*Profile, error) {
	user, err := s.store.GetUser(ctx, identity.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, domainerrors.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	books, err := s.store.ListBooksByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviewsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Books: books, Reviews: reviews}, nil
}

// UsersByIDs loads the users referenced by books or reviews.
func (s *AuthService) UsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	return s.store.GetUsersByIDs(ctx, ids)
}

func (s *AuthService) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
