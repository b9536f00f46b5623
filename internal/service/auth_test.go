package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookerapp/booker-server/internal/errors"
)

func requireDomainError(t *testing.T, err error, code domainerrors.Code, message string) *domainerrors.Error {
	t.Helper()
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
	if message != "" {
		assert.Equal(t, message, domainErr.Message)
	}
	return domainErr
}

func TestAuthService_Signup(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	resp, err := env.services.Auth.Signup(ctx, SignupRequest{
		Name:     "  Ada  Lovelace ",
		Email:    "Ada@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ada Lovelace", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEqual(t, "secret123", resp.User.PasswordHash)
	assert.True(t, len(resp.User.ID) > len("user-"))
}

func TestAuthService_Signup_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.services.Auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = env.services.Auth.Signup(ctx, SignupRequest{Name: "Ada Two", Email: "ADA@example.com", Password: "secret456"})
	requireDomainError(t, err, domainerrors.CodeDuplicate, "Email already in use")
}

func TestAuthService_Signup_ReportsEveryInvalidField(t *testing.T) {
	env := setupServices(t)

	_, err := env.services.Auth.Signup(context.Background(), SignupRequest{Name: "A", Email: "nope", Password: "123"})
	domainErr := requireDomainError(t, err, domainerrors.CodeValidation, "")

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Len(t, details, 3)
	assert.Equal(t, "name must be at least 2 characters", details["name"])
	assert.Equal(t, "email must be a valid email address", details["email"])
	assert.Equal(t, "password must be at least 6 characters", details["password"])
}

func TestAuthService_Login(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ada")

	resp, err := env.services.Auth.Login(ctx, LoginRequest{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.UserID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = env.services.Auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	requireDomainError(t, err, domainerrors.CodeInvalidCredentials, MsgInvalidCredentials)

	_, err = env.services.Auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	requireDomainError(t, err, domainerrors.CodeInvalidCredentials, MsgInvalidCredentials)

	_, err = env.services.Auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "123"})
	requireDomainError(t, err, domainerrors.CodeValidation, "")
}

func TestAuthService_VerifyToken(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	resp, err := env.services.Auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	identity, err := env.services.Auth.VerifyToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, identity.UserID)
	assert.Equal(t, "Ada", identity.Name)

	_, err = env.services.Auth.VerifyToken(ctx, "")
	requireDomainError(t, err, domainerrors.CodeUnauthorized, MsgNoToken)

	_, err = env.services.Auth.VerifyToken(ctx, "v4.local.garbage")
	requireDomainError(t, err, domainerrors.CodeUnauthorized, MsgTokenInvalid)

	require.NoError(t, env.store.Users.Delete(ctx, resp.User.ID))
	_, err = env.services.Auth.VerifyToken(ctx, resp.Token)
	requireDomainError(t, err, domainerrors.CodeUnauthorized, MsgUserNotFound)
}

func TestAuthService_Profile(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	bob := env.signup(t, "bob")

	dune := env.createBook(t, ada, "Dune")
	emma := env.createBook(t, bob, "Emma")
	env.createBook(t, ada, "Dune Messiah")
	env.review(t, ada, emma.ID, 5)

	profile, err := env.services.Auth.Profile(ctx, ada)
	require.NoError(t, err)

	assert.Equal(t, ada.UserID, profile.User.ID)
	require.Len(t, profile.Books, 2)
	assert.Equal(t, "Dune Messiah", profile.Books[0].Title, "newest first")
	assert.Equal(t, dune.ID, profile.Books[1].ID)
	require.Len(t, profile.Reviews, 1)
	assert.Equal(t, emma.ID, profile.Reviews[0].BookID)
}
