package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/threadline-io/production-portal/platform/go/persistence"
)

// MemoryRepository keeps profiles and role grants in memory. It backs tests and local runs.
type MemoryRepository struct {
	mu       sync.Mutex
	profiles map[string]persistence.Profile
	roles    map[string][]string
	lines    map[string][]string
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles: make(map[string]persistence.Profile),
		roles:    make(map[string][]string),
		lines:    make(map[string][]string),
	}
}

var _ Repository = (*MemoryRepository)(nil)

// Put stores a profile with its role names, replacing any previous entry.
func (m *MemoryRepository) Put(profile persistence.Profile, roleNames ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
	m.roles[profile.UserID] = append([]string(nil), roleNames...)
}

// AssignLine records a line assignment for the user.
func (m *MemoryRepository) AssignLine(userID, lineID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[userID] = append(m.lines[userID], lineID)
}

// Lines returns the user's line assignments.
func (m *MemoryRepository) Lines(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines[userID]...)
}

func (m *MemoryRepository) GetProfile(_ context.Context, userID string) (persistence.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return persistence.Profile{}, persistence.ErrProfileNotFound
	}
	return p, nil
}

func (m *MemoryRepository) ListRoles(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.roles[userID]...)
	sort.Strings(out)
	return out, nil
}

// RemoveUserAccess mirrors the Postgres transaction: roles and line assignments go and the
// profile is detached from its factory.
func (m *MemoryRepository) RemoveUserAccess(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return persistence.ErrProfileNotFound
	}
	p.FactoryID = nil
	m.profiles[userID] = p
	delete(m.roles, userID)
	delete(m.lines, userID)
	return nil
}
