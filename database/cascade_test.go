package database

import (
	"context"
	"slices"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

// The API never deletes types or users. These helpers let the contract
// suite check that both stores cascade such deletes to businesses.

// DeleteBusinessType removes a type and, like the ON DELETE CASCADE foreign
// key, every business of that type.
func (m *MemoryStore) DeleteBusinessType(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.businessTypes, func(t models.BusinessType) bool { return t.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	m.businessTypes = slices.Delete(m.businessTypes, i, i+1)
	m.businesses = slices.DeleteFunc(m.businesses, func(b models.Business) bool { return b.BusinessTypeID == id })
	return nil
}

// DeleteUser removes a user and cascades to their businesses.
func (m *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	m.users = slices.Delete(m.users, i, i+1)
	m.businesses = slices.DeleteFunc(m.businesses, func(b models.Business) bool { return b.UserID == id })
	return nil
}

// DeleteBusinessType drops a type; its businesses go with it through the
// cascading foreign key.
func (s *PGStore) DeleteBusinessType(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM business_types WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteUser drops a user and, by cascade, their businesses.
func (s *PGStore) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
