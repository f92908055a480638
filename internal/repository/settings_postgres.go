package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rxdesk/rxdesk/internal/domain"
)

var ErrSettingsNotFound = errors.New("settings not found")

var ErrUserNotFound = errors.New("user profile not found")

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetOrganization(ctx context.Context, pharmacyID uuid.UUID) (*domain.OrganizationSettings, error) {
	var s domain.OrganizationSettings
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading organization settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) UpsertOrganization(ctx context.Context, s *domain.OrganizationSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pharmacy_id"}},
			UpdateAll: true,
		}).
		Create(s).Error
}

func (r *SettingsRepository) GetNotifications(ctx context.Context, pharmacyID uuid.UUID) (*domain.NotificationSettings, error) {
	var s domain.NotificationSettings
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading notification settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) UpsertNotifications(ctx context.Context, s *domain.NotificationSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pharmacy_id"}},
			UpdateAll: true,
		}).
		Create(s).Error
}

func (r *SettingsRepository) ListUsers(ctx context.Context, pharmacyID uuid.UUID) ([]*domain.UserProfile, error) {
	var rows []*domain.UserProfile
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing user profiles: %w", err)
	}
	return rows, nil
}

func (r *SettingsRepository) GetUserByID(ctx context.Context, pharmacyID, id uuid.UUID) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user profile: %w", err)
	}
	return &u, nil
}

func (r *SettingsRepository) CreateUser(ctx context.Context, u *domain.UserProfile) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *SettingsRepository) UpdateUser(ctx context.Context, u *domain.UserProfile) error {
	return r.db.WithContext(ctx).
		Where("pharmacy_id = ?", u.PharmacyID).
		Save(u).Error
}

func (r *SettingsRepository) DeleteUser(ctx context.Context, pharmacyID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		Delete(&domain.UserProfile{})
	if res.Error != nil {
		return fmt.Errorf("deleting user profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UserRepository is the login-path view over user_profiles. Lookups by
// email cross tenants because the email is globally unique.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.UserProfile) error {
	return r.db.WithContext(ctx).Save(u).Error
}
