// Package session manages the administrative session marker. Trust is
// established purely by the presence and shape of a stored record, with no
// server-verified token; a known weakness, documented rather than hardened.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/cheburek-storefront/internal/storage"
)

// Slot is the storage slot holding the serialized session marker.
const Slot = "admin_auth"

var (
	// ErrMissingFields is returned when username, password, or employee id is
	// empty.
	ErrMissingFields = errors.New("username, password and employee id are required")
	// ErrInvalidCredentials is returned when no credential matches.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// State is the session context object handed to administrative views. It is
// populated once at login and invalidated by a single Logout call; callers
// never read the storage slot directly.
type State struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	EmployeeID      string    `json:"employeeId"`
	Username        string    `json:"username"`
	Role            string    `json:"role"`
	LoginAt         time.Time `json:"loginAt"`
}

// Credential is one entry of the local login table. Logins are verified
// against this table only; no upstream verification is attempted.
type Credential struct {
	Username   string
	Password   string
	EmployeeID string
	Role       string
}

// defaultCredentials are the built-in sample back-office accounts, used when
// no credential table is configured.
var defaultCredentials = []Credential{
	{Username: "admin", Password: "admin123", EmployeeID: "1", Role: "manager"},
	{Username: "Smirnov Ivan Sergeevich", Password: "+7 (999) 111-22-33", EmployeeID: "1", Role: "manager"},
	{Username: "Petrova Anna Vladimirovna", Password: "+7 (999) 222-33-44", EmployeeID: "2", Role: "cook"},
}

// Manager authenticates administrators and persists the session marker.
type Manager struct {
	storage     storage.Store
	credentials []Credential
	now         func() time.Time
}

// NewManager creates a Manager. A nil credential list falls back to the
// built-in sample accounts.
func NewManager(st storage.Store, credentials []Credential) *Manager {
	if credentials == nil {
		credentials = defaultCredentials
	}
	return &Manager{
		storage:     st,
		credentials: credentials,
		now:         time.Now,
	}
}

// Login verifies the credentials against the local table and persists the
// resulting session marker.
func (m *Manager) Login(ctx context.Context, username, password, employeeID string) (*State, error) {
	if username == "" || password == "" || employeeID == "" {
		return nil, ErrMissingFields
	}

	for _, c := range m.credentials {
		if c.Username != username || c.Password != password || c.EmployeeID != employeeID {
			continue
		}
		state := &State{
			IsAuthenticated: true,
			EmployeeID:      c.EmployeeID,
			Username:        c.Username,
			Role:            c.Role,
			LoginAt:         m.now(),
		}
		data, err := json.Marshal(state)
		if err != nil {
			return nil, errors.Wrap(err, "encode session")
		}
		if err := m.storage.Set(ctx, Slot, data); err != nil {
			return nil, errors.Wrap(err, "persist session")
		}
		return state, nil
	}
	return nil, ErrInvalidCredentials
}

// Current returns the persisted session state, or nil when no valid session
// exists. A corrupt marker is deleted rather than surfaced as an error.
func (m *Manager) Current(ctx context.Context) *State {
	data, err := m.storage.Get(ctx, Slot)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		zctx.From(ctx).Warn("Session read failed", zap.Error(err))
		return nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		zctx.From(ctx).Warn("Session marker is malformed, discarding", zap.Error(err))
		_ = m.storage.Delete(ctx, Slot)
		return nil
	}
	if !state.IsAuthenticated {
		return nil
	}
	return &state
}

// Logout invalidates the session by removing the marker.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.storage.Delete(ctx, Slot); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}
