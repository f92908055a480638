package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxdesk/rxdesk/internal/domain/prescription"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

var _ prescription.Repository = (*PrescriptionRepository)(nil)

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, prescription.ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading prescription: %w", err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) Update(ctx context.Context, p *prescription.Prescription) error {
	return r.db.WithContext(ctx).
		Where("pharmacy_id = ?", p.PharmacyID).
		Save(p).Error
}

func (r *PrescriptionRepository) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		Delete(&prescription.Prescription{})
	if res.Error != nil {
		return fmt.Errorf("deleting prescription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	return nil
}

func (r *PrescriptionRepository) List(ctx context.Context, q *prescription.ListQuery) (*prescription.PagedPrescriptions, error) {
	tx := r.db.WithContext(ctx).
		Model(&prescription.Prescription{}).
		Where("pharmacy_id = ?", q.PharmacyID)

	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.Patient != "" {
		tx = tx.Where("patient_name ILIKE ?", "%"+q.Patient+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting prescriptions: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	var rows []*prescription.Prescription
	err := tx.
		Order("date_created DESC").
		Offset((page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		totalPages++
	}

	return &prescription.PagedPrescriptions{
		Prescriptions: rows,
		TotalCount:    total,
		Page:          page,
		PageSize:      q.PageSize,
		TotalPages:    totalPages,
	}, nil
}

func (r *PrescriptionRepository) ListRenewals(ctx context.Context, pharmacyID uuid.UUID) ([]*prescription.Prescription, error) {
	var rows []*prescription.Prescription
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND renewal_due_date IS NOT NULL", pharmacyID).
		Order("renewal_due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing renewals: %w", err)
	}
	return rows, nil
}
