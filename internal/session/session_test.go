package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/cheburek-storefront/internal/storage"
)

func TestManager_LoginSuccess(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil)

	state, err := m.Login(ctx, "admin", "admin123", "1")
	require.NoError(t, err)

	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "admin", state.Username)
	assert.Equal(t, "1", state.EmployeeID)
	assert.Equal(t, "manager", state.Role)
	assert.False(t, state.LoginAt.IsZero())
}

func TestManager_LoginMissingFields(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil)

	_, err := m.Login(ctx, "", "admin123", "1")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = m.Login(ctx, "admin", "", "1")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = m.Login(ctx, "admin", "admin123", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestManager_LoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil)

	_, err := m.Login(ctx, "admin", "wrong", "1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Credentials must match as a triple, not field by field.
	_, err = m.Login(ctx, "admin", "admin123", "2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Nil(t, m.Current(ctx), "failed login must not create a session")
}

func TestManager_CustomCredentials(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), []Credential{
		{Username: "chef", Password: "secret", EmployeeID: "7", Role: "cook"},
	})

	_, err := m.Login(ctx, "admin", "admin123", "1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "custom table replaces the built-in accounts")

	state, err := m.Login(ctx, "chef", "secret", "7")
	require.NoError(t, err)
	assert.Equal(t, "cook", state.Role)
}

func TestManager_CurrentRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil)

	assert.Nil(t, m.Current(ctx))

	_, err := m.Login(ctx, "Petrova Anna Vladimirovna", "+7 (999) 222-33-44", "2")
	require.NoError(t, err)

	state := m.Current(ctx)
	require.NotNil(t, state)
	assert.Equal(t, "cook", state.Role)
	assert.Equal(t, "2", state.EmployeeID)
}

func TestManager_CorruptMarkerDiscarded(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	m := NewManager(mem, nil)

	require.NoError(t, mem.Set(ctx, Slot, []byte("{broken")))

	assert.Nil(t, m.Current(ctx))
	_, err := mem.Get(ctx, Slot)
	assert.ErrorIs(t, err, storage.ErrNotFound, "corrupt marker must be deleted")
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil)

	_, err := m.Login(ctx, "admin", "admin123", "1")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.Nil(t, m.Current(ctx))
}
