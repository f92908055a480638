package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/rxdesk/rxdesk/internal/domain"
)

// memorySettings adapts MemoryStore to the settings/user repositories. The
// accessor indirection keeps method sets from clashing with the entity
// repositories on the store itself.
type memorySettings struct {
	store *MemoryStore
}

func (m *MemoryStore) Settings() *memorySettings {
	return &memorySettings{store: m}
}

func (s *memorySettings) GetOrganization(ctx context.Context, pharmacyID uuid.UUID) (*domain.OrganizationSettings, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	os, ok := s.store.orgSettings[pharmacyID]
	if !ok {
		return nil, ErrSettingsNotFound
	}
	cp := os
	return &cp, nil
}

func (s *memorySettings) UpsertOrganization(ctx context.Context, os *domain.OrganizationSettings) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if err := s.store.failed(); err != nil {
		return err
	}
	if existing, ok := s.store.orgSettings[os.PharmacyID]; ok {
		os.ID = existing.ID
	} else if os.ID == uuid.Nil {
		os.ID = uuid.New()
	}
	s.store.orgSettings[os.PharmacyID] = *os
	return nil
}

func (s *memorySettings) GetNotifications(ctx context.Context, pharmacyID uuid.UUID) (*domain.NotificationSettings, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	ns, ok := s.store.notifSettings[pharmacyID]
	if !ok {
		return nil, ErrSettingsNotFound
	}
	cp := ns
	return &cp, nil
}

func (s *memorySettings) UpsertNotifications(ctx context.Context, ns *domain.NotificationSettings) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if err := s.store.failed(); err != nil {
		return err
	}
	if existing, ok := s.store.notifSettings[ns.PharmacyID]; ok {
		ns.ID = existing.ID
	} else if ns.ID == uuid.Nil {
		ns.ID = uuid.New()
	}
	s.store.notifSettings[ns.PharmacyID] = *ns
	return nil
}

func (s *memorySettings) ListUsers(ctx context.Context, pharmacyID uuid.UUID) ([]*domain.UserProfile, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var rows []*domain.UserProfile
	for _, u := range s.store.users {
		if u.PharmacyID != pharmacyID {
			continue
		}
		cp := u
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows, nil
}

func (s *memorySettings) GetUserByID(ctx context.Context, pharmacyID, id uuid.UUID) (*domain.UserProfile, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	u, ok := s.store.users[id]
	if !ok || u.PharmacyID != pharmacyID {
		return nil, ErrUserNotFound
	}
	cp := u
	return &cp, nil
}

func (s *memorySettings) CreateUser(ctx context.Context, u *domain.UserProfile) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if err := s.store.failed(); err != nil {
		return err
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.store.users[u.ID] = *u
	return nil
}

func (s *memorySettings) UpdateUser(ctx context.Context, u *domain.UserProfile) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if err := s.store.failed(); err != nil {
		return err
	}
	if _, ok := s.store.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	s.store.users[u.ID] = *u
	return nil
}

func (s *memorySettings) DeleteUser(ctx context.Context, pharmacyID, id uuid.UUID) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if err := s.store.failed(); err != nil {
		return err
	}
	u, ok := s.store.users[id]
	if !ok || u.PharmacyID != pharmacyID {
		return ErrUserNotFound
	}
	delete(s.store.users, id)
	return nil
}

// memoryUsers is the login-path view over the same user map.
type memoryUsers struct {
	store *MemoryStore
}

func (m *MemoryStore) Users() *memoryUsers {
	return &memoryUsers{store: m}
}

func (u *memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	for _, usr := range u.store.users {
		if usr.Email == email {
			cp := usr
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (u *memoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	usr, ok := u.store.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := usr
	return &cp, nil
}

func (u *memoryUsers) Update(ctx context.Context, usr *domain.UserProfile) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if err := u.store.failed(); err != nil {
		return err
	}
	if _, ok := u.store.users[usr.ID]; !ok {
		return ErrUserNotFound
	}
	u.store.users[usr.ID] = *usr
	return nil
}

// memoryAudit collects audit entries for inspection in tests.
type memoryAudit struct {
	store *MemoryStore
}

func (m *MemoryStore) Audit() *memoryAudit {
	return &memoryAudit{store: m}
}

func (a *memoryAudit) Create(ctx context.Context, entry *domain.AuditLog) error {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	a.store.auditLogs = append(a.store.auditLogs, *entry)
	return nil
}
