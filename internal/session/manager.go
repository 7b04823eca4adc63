// Package session provides the client session: the bearer token issued by the
// travel backend, held in a persisted key-value slot under a fixed key.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TokenKey is the fixed slot name holding the bearer token
const TokenKey = "access_token"

var (
	// ErrNoToken is returned when no bearer token is stored
	ErrNoToken = errors.New("no session token")
	// ErrEmptyToken is returned when an empty token is offered for storage
	ErrEmptyToken = errors.New("empty session token")
)

// Manager defines the session token operations
type Manager interface {
	SetToken(ctx context.Context, token string) error
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
	HasToken(ctx context.Context) bool
}

// manager implements Manager interface
type manager struct {
	store Store
	key   string
	ttl   time.Duration
}

// NewManager creates a session manager for the single local slot
func NewManager(store Store) Manager {
	return &manager{
		store: store,
		key:   TokenKey,
	}
}

// NewBrowserManager creates a session manager for one browser of the web
// front end. Its token lives under session:<sessionID>:access_token and
// expires after ttl (zero keeps it until logout).
func NewBrowserManager(store Store, sessionID string, ttl time.Duration) Manager {
	return &manager{
		store: store,
		key:   fmt.Sprintf("session:%s:%s", sessionID, TokenKey),
		ttl:   ttl,
	}
}

// SetToken persists the token exactly as given. Local slots never expire;
// the backend decides when the token stops being valid.
func (m *manager) SetToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	if err := m.store.Set(ctx, m.key, token, m.ttl); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Token returns the stored token or ErrNoToken
func (m *manager) Token(ctx context.Context) (string, error) {
	token, err := m.store.Get(ctx, m.key)
	if errors.Is(err, ErrKeyNotFound) || (err == nil && token == "") {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// ClearToken removes the token
func (m *manager) ClearToken(ctx context.Context) error {
	if err := m.store.Delete(ctx, m.key); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// HasToken reports whether a token is stored. Store failures count as absent.
func (m *manager) HasToken(ctx context.Context) bool {
	_, err := m.Token(ctx)
	return err == nil
}
