package order

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *CustomerOrder) error
	GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*CustomerOrder, error)
	Update(ctx context.Context, o *CustomerOrder) error
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
	List(ctx context.Context, q *ListQuery) (*PagedOrders, error)
}
