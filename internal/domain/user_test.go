package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("normalizes name and email", func(t *testing.T) {
		user, err := NewUser("  Ada ", " Ada@Example.COM ", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, RoleUser, user.Role)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := NewUser("Ada", "ada@example.com", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := NewUser("Ada", "not-an-email", "hunter2hunter2")
		assert.ErrorIs(t, err, ErrInvalidEmail)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewUser("   ", "ada@example.com", "hunter2hunter2")
		assert.ErrorIs(t, err, ErrEmptyUserName)
	})
}

func TestUserRef(t *testing.T) {
	user, err := NewUser("Ada", "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)

	ref := user.Ref()
	assert.Equal(t, user.ID, ref.ID)
	assert.Equal(t, "Ada", ref.Name)
	assert.Equal(t, "ada@example.com", ref.Email)
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("owner").IsValid())
}

func TestPrincipal(t *testing.T) {
	p := Principal{ID: uuid.New(), Role: RoleAdmin}
	assert.True(t, p.IsAdmin())
	assert.True(t, p.Is(p.ID))

	q := Principal{ID: uuid.New(), Role: RoleUser}
	assert.False(t, q.IsAdmin())
	assert.False(t, q.Is(p.ID))
}
