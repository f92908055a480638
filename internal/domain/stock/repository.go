package stock

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateItem(ctx context.Context, item *StockItem) error
	GetItemByID(ctx context.Context, pharmacyID, id uuid.UUID) (*StockItem, error)
	UpdateItem(ctx context.Context, item *StockItem) error
	DeleteItem(ctx context.Context, pharmacyID, id uuid.UUID) error
	ListItems(ctx context.Context, q *ListQuery) (*PagedItems, error)

	CreateTodo(ctx context.Context, todo *OrderTodo) error
	GetTodoByID(ctx context.Context, pharmacyID, id uuid.UUID) (*OrderTodo, error)
	UpdateTodo(ctx context.Context, todo *OrderTodo) error
	DeleteTodo(ctx context.Context, pharmacyID, id uuid.UUID) error
	ListTodos(ctx context.Context, pharmacyID uuid.UUID) ([]*OrderTodo, error)

	AppendDelivery(ctx context.Context, entry *DeliveryLog) error
	ListDeliveries(ctx context.Context, pharmacyID uuid.UUID, limit int) ([]*DeliveryLog, error)
}
