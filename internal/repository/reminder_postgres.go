package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxdesk/rxdesk/internal/domain/reminder"
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

var _ reminder.Repository = (*ReminderRepository)(nil)

// Append inserts a reminder event. There is deliberately no update or
// delete: events are immutable once written.
func (r *ReminderRepository) Append(ctx context.Context, e *reminder.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ReminderRepository) ListByPrescription(ctx context.Context, pharmacyID, prescriptionID uuid.UUID) ([]*reminder.Event, error) {
	var rows []*reminder.Event
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND prescription_id = ?", pharmacyID, prescriptionID).
		Order("sent_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing reminder events: %w", err)
	}
	return rows, nil
}
