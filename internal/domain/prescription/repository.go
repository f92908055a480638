package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
	List(ctx context.Context, q *ListQuery) (*PagedPrescriptions, error)
	ListRenewals(ctx context.Context, pharmacyID uuid.UUID) ([]*Prescription, error)
}
