package user

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"auth_service/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	before := time.Now().UnixMilli()
	u := NewUser("alice", "a@x.com", "secret1")

	id, err := strconv.ParseInt(u.ID, 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id, before)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "secret1", u.Password)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestNewID_UniqueWithinSameMillisecond(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := newID(now)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestUser_HashAndComparePassword(t *testing.T) {
	u := NewUser("alice", "a@x.com", "secret1")
	require.NoError(t, u.HashPassword())

	assert.NotEqual(t, "secret1", u.Password)
	assert.NoError(t, u.ComparePassword("secret1"))
	assert.ErrorIs(t, u.ComparePassword("wrong-password"), auth.ErrPasswordMismatch)
}

func TestUser_JSONOmitsPassword(t *testing.T) {
	u := &User{ID: "1", Username: "alice", Email: "a@x.com", Password: "$2a$10$hash"}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "$2a$10$hash")
}

func TestUser_PublicAndProfile(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := &User{ID: "1", Username: "alice", Email: "a@x.com", Password: "hash", CreatedAt: createdAt}

	assert.Equal(t, PublicUser{ID: "1", Username: "alice", Email: "a@x.com"}, u.Public())
	assert.Equal(t, Profile{ID: "1", Username: "alice", Email: "a@x.com", CreatedAt: createdAt}, u.Profile())
}
