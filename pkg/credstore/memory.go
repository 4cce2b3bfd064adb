package credstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Its contents are lost with the process.
type Memory struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(_ context.Context, access, refresh string) error {
	if access == "" {
		return ErrEmptyAccessToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.creds.AccessToken = access
	if refresh != "" {
		m.creds.RefreshToken = refresh
	}
	return nil
}

func (m *Memory) Load(_ context.Context) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
