package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxdesk/rxdesk/internal/domain/order"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ order.Repository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(ctx context.Context, o *order.CustomerOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*order.CustomerOrder, error) {
	var o order.CustomerOrder
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading customer order: %w", err)
	}
	// Old rows may still carry the retired "overdue" status literal.
	o.Status = o.Status.Normalize()
	return &o, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.CustomerOrder) error {
	return r.db.WithContext(ctx).
		Where("pharmacy_id = ?", o.PharmacyID).
		Save(o).Error
}

func (r *OrderRepository) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		Delete(&order.CustomerOrder{})
	if res.Error != nil {
		return fmt.Errorf("deleting customer order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, q *order.ListQuery) (*order.PagedOrders, error) {
	tx := r.db.WithContext(ctx).
		Model(&order.CustomerOrder{}).
		Where("pharmacy_id = ?", q.PharmacyID)

	if q.Status != nil {
		if *q.Status == order.StatusReadyForCollection {
			// Include legacy "overdue" rows, which normalize to ready_for_collection.
			tx = tx.Where("status IN ?", []string{string(order.StatusReadyForCollection), "overdue"})
		} else {
			tx = tx.Where("status = ?", *q.Status)
		}
	}
	if q.OrderType != nil {
		tx = tx.Where("order_type = ?", *q.OrderType)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting customer orders: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	var rows []*order.CustomerOrder
	err := tx.
		Order("date_ordered DESC").
		Offset((page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing customer orders: %w", err)
	}

	for _, o := range rows {
		o.Status = o.Status.Normalize()
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		totalPages++
	}

	return &order.PagedOrders{
		Orders:     rows,
		TotalCount: total,
		Page:       page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}
