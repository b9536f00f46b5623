package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookerapp/booker-server/internal/domain"
	"github.com/bookerapp/booker-server/internal/store"
)

func makeUser(id, email string) *domain.User {
	u := &domain.User{Name: "User " + id, Email: email, PasswordHash: "hash"}
	u.ID = id
	u.InitTimestamps()
	return u
}

func TestUser_CreateNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	u := makeUser("u1", "  Ana@Example.COM ")
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, "ana@example.com", u.Email)

	got, err := s.GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}

func TestUser_EmailIsUnique(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateUser(ctx, makeUser("u1", "ana@example.com")))

	err := s.CreateUser(ctx, makeUser("u2", "Ana@Example.com"))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUser_Lookups(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateUser(ctx, makeUser("u1", "a@x.io")))
	require.NoError(t, s.CreateUser(ctx, makeUser("u2", "b@x.io")))

	_, err := s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@x.io")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	users, err := s.GetUsersByIDs(ctx, []string{"u1", "u2", "u1", "ghost", ""})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "a@x.io", users["u1"].Email)
}
