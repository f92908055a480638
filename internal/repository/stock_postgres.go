package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxdesk/rxdesk/internal/domain/stock"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

var _ stock.Repository = (*StockRepository)(nil)

func (r *StockRepository) CreateItem(ctx context.Context, item *stock.StockItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *StockRepository) GetItemByID(ctx context.Context, pharmacyID, id uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, stock.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading stock item: %w", err)
	}
	return &item, nil
}

func (r *StockRepository) UpdateItem(ctx context.Context, item *stock.StockItem) error {
	return r.db.WithContext(ctx).
		Where("pharmacy_id = ?", item.PharmacyID).
		Save(item).Error
}

func (r *StockRepository) DeleteItem(ctx context.Context, pharmacyID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		Delete(&stock.StockItem{})
	if res.Error != nil {
		return fmt.Errorf("deleting stock item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return stock.ErrItemNotFound
	}
	return nil
}

func (r *StockRepository) ListItems(ctx context.Context, q *stock.ListQuery) (*stock.PagedItems, error) {
	tx := r.db.WithContext(ctx).
		Model(&stock.StockItem{}).
		Where("pharmacy_id = ?", q.PharmacyID)

	if q.LowOnly {
		tx = tx.Where("current_stock <= minimum_stock")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting stock items: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	var rows []*stock.StockItem
	err := tx.
		Order("name ASC").
		Offset((page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing stock items: %w", err)
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		totalPages++
	}

	return &stock.PagedItems{
		Items:      rows,
		TotalCount: total,
		Page:       page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *StockRepository) CreateTodo(ctx context.Context, todo *stock.OrderTodo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *StockRepository) GetTodoByID(ctx context.Context, pharmacyID, id uuid.UUID) (*stock.OrderTodo, error) {
	var todo stock.OrderTodo
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&todo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, stock.ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading reorder task: %w", err)
	}
	return &todo, nil
}

func (r *StockRepository) UpdateTodo(ctx context.Context, todo *stock.OrderTodo) error {
	return r.db.WithContext(ctx).
		Where("pharmacy_id = ?", todo.PharmacyID).
		Save(todo).Error
}

func (r *StockRepository) DeleteTodo(ctx context.Context, pharmacyID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		Delete(&stock.OrderTodo{})
	if res.Error != nil {
		return fmt.Errorf("deleting reorder task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return stock.ErrTodoNotFound
	}
	return nil
}

func (r *StockRepository) ListTodos(ctx context.Context, pharmacyID uuid.UUID) ([]*stock.OrderTodo, error) {
	var rows []*stock.OrderTodo
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing reorder tasks: %w", err)
	}
	return rows, nil
}

func (r *StockRepository) AppendDelivery(ctx context.Context, entry *stock.DeliveryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *StockRepository) ListDeliveries(ctx context.Context, pharmacyID uuid.UUID, limit int) ([]*stock.DeliveryLog, error) {
	var rows []*stock.DeliveryLog
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("received_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	return rows, nil
}
