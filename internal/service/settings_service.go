package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rxdesk/rxdesk/internal/domain"
)

type SettingsRepository interface {
	GetOrganization(ctx context.Context, pharmacyID uuid.UUID) (*domain.OrganizationSettings, error)
	UpsertOrganization(ctx context.Context, s *domain.OrganizationSettings) error
	GetNotifications(ctx context.Context, pharmacyID uuid.UUID) (*domain.NotificationSettings, error)
	UpsertNotifications(ctx context.Context, s *domain.NotificationSettings) error

	ListUsers(ctx context.Context, pharmacyID uuid.UUID) ([]*domain.UserProfile, error)
	GetUserByID(ctx context.Context, pharmacyID, id uuid.UUID) (*domain.UserProfile, error)
	CreateUser(ctx context.Context, u *domain.UserProfile) error
	UpdateUser(ctx context.Context, u *domain.UserProfile) error
	DeleteUser(ctx context.Context, pharmacyID, id uuid.UUID) error
}

type SettingsService struct {
	repo     SettingsRepository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewSettingsService(repo SettingsRepository, auditSvc *AuditService, log *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *SettingsService) Organization(ctx context.Context, actor domain.Actor) (*domain.OrganizationSettings, error) {
	return s.repo.GetOrganization(ctx, actor.PharmacyID)
}

func (s *SettingsService) UpdateOrganization(ctx context.Context, settings *domain.OrganizationSettings, actor domain.Actor, ip string) (*domain.OrganizationSettings, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanEditSettings }) {
		return nil, ErrForbidden
	}
	if settings.Name == "" {
		return nil, &ValidationError{Fields: []string{"name is required"}}
	}

	settings.PharmacyID = actor.PharmacyID
	if err := s.repo.UpsertOrganization(ctx, settings); err != nil {
		return nil, persistErr("saving organization settings", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "organization_settings", ResourceID: settings.ID.String(), IPAddress: ip,
	})

	return settings, nil
}

func (s *SettingsService) Notifications(ctx context.Context, actor domain.Actor) (*domain.NotificationSettings, error) {
	return s.repo.GetNotifications(ctx, actor.PharmacyID)
}

func (s *SettingsService) UpdateNotifications(ctx context.Context, settings *domain.NotificationSettings, actor domain.Actor, ip string) (*domain.NotificationSettings, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanEditSettings }) {
		return nil, ErrForbidden
	}

	settings.PharmacyID = actor.PharmacyID
	if err := s.repo.UpsertNotifications(ctx, settings); err != nil {
		return nil, persistErr("saving notification settings", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "notification_settings", ResourceID: settings.ID.String(), IPAddress: ip,
	})

	return settings, nil
}

func (s *SettingsService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.UserProfile, error) {
	return s.repo.ListUsers(ctx, actor.PharmacyID)
}

type CreateUserCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

func (s *SettingsService) AddUser(ctx context.Context, cmd *CreateUserCommand, actor domain.Actor, ip string) (*domain.UserProfile, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanEditSettings }) {
		return nil, ErrForbidden
	}

	var fields []string
	if cmd.Email == "" {
		fields = append(fields, "email is required")
	}
	if len(cmd.Password) < 8 {
		fields = append(fields, "password must be at least 8 characters")
	}
	if !cmd.Role.IsValid() {
		fields = append(fields, fmt.Sprintf("unknown role %q", cmd.Role))
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.UserProfile{
		PharmacyID:   actor.PharmacyID,
		Email:        cmd.Email,
		PasswordHash: string(hash),
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		Role:         cmd.Role,
		IsActive:     true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, persistErr("creating user profile", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionCreate, ResourceType: "user_profile", ResourceID: user.ID.String(), IPAddress: ip,
	})

	return user, nil
}

type UpdateUserCommand struct {
	FirstName *string
	LastName  *string
	Role      *domain.Role
	IsActive  *bool
}

func (s *SettingsService) UpdateUser(ctx context.Context, id uuid.UUID, cmd *UpdateUserCommand, actor domain.Actor, ip string) (*domain.UserProfile, error) {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanEditSettings }) {
		return nil, ErrForbidden
	}

	user, err := s.repo.GetUserByID(ctx, actor.PharmacyID, id)
	if err != nil {
		return nil, err
	}

	if cmd.FirstName != nil {
		user.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		user.LastName = *cmd.LastName
	}
	if cmd.Role != nil {
		if !cmd.Role.IsValid() {
			return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown role %q", *cmd.Role)}}
		}
		user.Role = *cmd.Role
	}
	if cmd.IsActive != nil {
		user.IsActive = *cmd.IsActive
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, persistErr("updating user profile", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionUpdate, ResourceType: "user_profile", ResourceID: id.String(), IPAddress: ip,
	})

	return user, nil
}

// DeleteUser removes a profile. Only roles with CanDeleteUsers (admins) may
// do this, and nobody may delete themselves.
func (s *SettingsService) DeleteUser(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) error {
	if !actor.Can(func(c domain.Capabilities) bool { return c.CanDeleteUsers }) {
		return ErrForbidden
	}
	if id == actor.UserID {
		return &ValidationError{Fields: []string{"cannot delete your own account"}}
	}

	if err := s.repo.DeleteUser(ctx, actor.PharmacyID, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: actor.Role, PharmacyID: actor.PharmacyID,
		Action: domain.ActionDelete, ResourceType: "user_profile", ResourceID: id.String(), IPAddress: ip,
	})
	return nil
}
