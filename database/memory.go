package database

import (
	"context"
	"slices"
	"sync"
	"time"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

// MemoryStore keeps the board in process memory. It enforces the same
// uniqueness, reference and state-deletion rules as the Postgres schema and
// serializes every write behind one lock.
type MemoryStore struct {
	mu sync.RWMutex

	now func() time.Time
	seq int64

	businessTypes []models.BusinessType
	users         []models.User
	states        []models.State
	businesses    []models.Business
}

var _ domain.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source; used by tests.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Board(ctx context.Context) (models.Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.Board{
		Businesses:    m.resolvedLocked(),
		States:        slices.Clone(nonNil(m.states)),
		BusinessTypes: slices.Clone(nonNil(m.businessTypes)),
		Users:         slices.Clone(nonNil(m.users)),
	}, nil
}

func (m *MemoryStore) Businesses(ctx context.Context) ([]models.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolvedLocked(), nil
}

func (m *MemoryStore) Business(ctx context.Context, id int64) (models.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.businessIndex(id)
	if i < 0 {
		return models.Business{}, domain.ErrNotFound
	}
	return m.resolve(m.businesses[i]), nil
}

func (m *MemoryStore) InsertBusiness(ctx context.Context, b models.Business) (models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRefsLocked(b.BusinessTypeID, b.UserID, b.StateID); err != nil {
		return models.Business{}, err
	}
	now := m.now()
	b.ID = m.nextID()
	b.CreatedAt, b.UpdatedAt = now, now
	b.BusinessType, b.User, b.State = nil, nil, nil
	m.businesses = append(m.businesses, b)
	return m.resolve(b), nil
}

func (m *MemoryStore) UpdateBusiness(ctx context.Context, id int64, p models.BusinessPatch) (models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.businessIndex(id)
	if i < 0 {
		return models.Business{}, domain.ErrNotFound
	}
	if p.Empty() {
		return m.resolve(m.businesses[i]), nil
	}
	b := m.businesses[i]
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.BusinessTypeID != nil {
		b.BusinessTypeID = *p.BusinessTypeID
	}
	if p.UserID != nil {
		b.UserID = *p.UserID
	}
	if p.StateID != nil {
		b.StateID = *p.StateID
	}
	if p.Value != nil {
		b.Value = *p.Value
	}
	if err := m.checkRefsLocked(b.BusinessTypeID, b.UserID, b.StateID); err != nil {
		return models.Business{}, err
	}
	b.UpdatedAt = m.now()
	m.businesses[i] = b
	return m.resolve(b), nil
}

func (m *MemoryStore) DeleteBusiness(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.businessIndex(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	m.businesses = slices.Delete(m.businesses, i, i+1)
	return nil
}

func (m *MemoryStore) States(ctx context.Context) ([]models.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(nonNil(m.states)), nil
}

func (m *MemoryStore) State(ctx context.Context, id int64) (models.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.states, func(s models.State) bool { return s.ID == id })
	if i < 0 {
		return models.State{}, domain.ErrNotFound
	}
	return m.states[i], nil
}

func (m *MemoryStore) InsertState(ctx context.Context, name string) (models.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.states, func(s models.State) bool { return s.Name == name }) {
		return models.State{}, domain.ErrDuplicate
	}
	now := m.now()
	st := models.State{ID: m.nextID(), Name: name, CreatedAt: now, UpdatedAt: now}
	m.states = append(m.states, st)
	return st, nil
}

func (m *MemoryStore) RenameState(ctx context.Context, id int64, name string) (models.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.states, func(s models.State) bool { return s.ID == id })
	if i < 0 {
		return models.State{}, domain.ErrNotFound
	}
	if slices.ContainsFunc(m.states, func(s models.State) bool { return s.Name == name && s.ID != id }) {
		return models.State{}, domain.ErrDuplicate
	}
	m.states[i].Name = name
	m.states[i].UpdatedAt = m.now()
	return m.states[i], nil
}

func (m *MemoryStore) DeleteStateIfUnused(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.states, func(s models.State) bool { return s.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	if slices.ContainsFunc(m.businesses, func(b models.Business) bool { return b.StateID == id }) {
		return domain.ErrInUse
	}
	m.states = slices.Delete(m.states, i, i+1)
	return nil
}

func (m *MemoryStore) BusinessTypes(ctx context.Context) ([]models.BusinessType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(nonNil(m.businessTypes)), nil
}

func (m *MemoryStore) InsertBusinessType(ctx context.Context, name string) (models.BusinessType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.businessTypes, func(t models.BusinessType) bool { return t.Name == name }) {
		return models.BusinessType{}, domain.ErrDuplicate
	}
	now := m.now()
	t := models.BusinessType{ID: m.nextID(), Name: name, CreatedAt: now, UpdatedAt: now}
	m.businessTypes = append(m.businessTypes, t)
	return t, nil
}

func (m *MemoryStore) Users(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(nonNil(m.users)), nil
}

func (m *MemoryStore) InsertUser(ctx context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.users, func(x models.User) bool { return x.Email == u.Email }) {
		return models.User{}, domain.ErrDuplicate
	}
	now := m.now()
	u.ID = m.nextID()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users = append(m.users, u)
	return u, nil
}

func (m *MemoryStore) Exists(ctx context.Context, ref domain.Ref, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existsLocked(ref, id), nil
}

func (m *MemoryStore) existsLocked(ref domain.Ref, id int64) bool {
	switch ref {
	case domain.RefBusinessType:
		return slices.ContainsFunc(m.businessTypes, func(t models.BusinessType) bool { return t.ID == id })
	case domain.RefUser:
		return slices.ContainsFunc(m.users, func(u models.User) bool { return u.ID == id })
	case domain.RefState:
		return slices.ContainsFunc(m.states, func(s models.State) bool { return s.ID == id })
	}
	return false
}

func (m *MemoryStore) checkRefsLocked(typeID, userID, stateID int64) error {
	switch {
	case !m.existsLocked(domain.RefBusinessType, typeID):
		return &domain.MissingReferenceError{Field: "business_type_id"}
	case !m.existsLocked(domain.RefUser, userID):
		return &domain.MissingReferenceError{Field: "user_id"}
	case !m.existsLocked(domain.RefState, stateID):
		return &domain.MissingReferenceError{Field: "state_id"}
	}
	return nil
}

func (m *MemoryStore) businessIndex(id int64) int {
	return slices.IndexFunc(m.businesses, func(b models.Business) bool { return b.ID == id })
}

func (m *MemoryStore) resolvedLocked() []models.Business {
	out := make([]models.Business, 0, len(m.businesses))
	for _, b := range m.businesses {
		out = append(out, m.resolve(b))
	}
	return out
}

// resolve attaches copies of the referenced rows.
func (m *MemoryStore) resolve(b models.Business) models.Business {
	if i := slices.IndexFunc(m.businessTypes, func(t models.BusinessType) bool { return t.ID == b.BusinessTypeID }); i >= 0 {
		t := m.businessTypes[i]
		b.BusinessType = &t
	}
	if i := slices.IndexFunc(m.users, func(u models.User) bool { return u.ID == b.UserID }); i >= 0 {
		u := m.users[i]
		b.User = &u
	}
	if i := slices.IndexFunc(m.states, func(s models.State) bool { return s.ID == b.StateID }); i >= 0 {
		s := m.states[i]
		b.State = &s
	}
	return b
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
