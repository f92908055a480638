package stock

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the derived stock-level band used for row highlighting.
type Tier string

const (
	TierCritical Tier = "critical"
	TierLow      Tier = "low"
	TierGood     Tier = "good"
)

type StockItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`

	Name            string `gorm:"column:name;type:varchar(255);not null;index"`
	CurrentStock    int    `gorm:"column:current_stock;not null"`
	MinimumStock    int    `gorm:"column:minimum_stock;not null"`
	Location        string `gorm:"column:location;type:varchar(100)"`
	Supplier        string `gorm:"column:supplier;type:varchar(255)"`
	SupplierContact string `gorm:"column:supplier_contact;type:varchar(255)"`

	LastUpdated time.Time  `gorm:"column:last_updated;not null"`
	UpdatedBy   *uuid.UUID `gorm:"column:updated_by;type:uuid"`
}

func (StockItem) TableName() string {
	return "pharmacy.stock_items"
}

func (s *StockItem) IsLowStock() bool {
	return s.CurrentStock <= s.MinimumStock
}

// StockTier bands the current level against the minimum. A minimum of zero
// means the item has no safety floor to measure against, so any level is
// treated as critical rather than dividing by zero.
func (s *StockItem) StockTier() Tier {
	if s.MinimumStock <= 0 {
		return TierCritical
	}

	ratio := float64(s.CurrentStock) / float64(s.MinimumStock)
	switch {
	case ratio <= 0.25:
		return TierCritical
	case ratio <= 0.5:
		return TierLow
	default:
		return TierGood
	}
}

type TodoStatus string

const (
	TodoPending   TodoStatus = "pending"
	TodoOrdered   TodoStatus = "ordered"
	TodoCancelled TodoStatus = "cancelled"
)

// OrderTodo is a reorder task queued from the stock screen.
type OrderTodo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`

	ItemName        string `gorm:"column:item_name;type:varchar(255);not null"`
	CurrentStock    int    `gorm:"column:current_stock;not null"`
	OrderQuantity   int    `gorm:"column:order_quantity;not null"`
	Supplier        string `gorm:"column:supplier;type:varchar(255);not null"`
	SupplierContact string `gorm:"column:supplier_contact;type:varchar(255)"`
	Notes           string `gorm:"column:notes;type:text"`

	Status TodoStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (OrderTodo) TableName() string {
	return "pharmacy.orders_todo"
}

// DeliveryLog is an append-only record of a received delivery.
type DeliveryLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`

	ItemName         string    `gorm:"column:item_name;type:varchar(255);not null;index"`
	QuantityReceived int       `gorm:"column:quantity_received;not null"`
	Supplier         string    `gorm:"column:supplier;type:varchar(255)"`
	ReceivedAt       time.Time `gorm:"column:received_at;not null;index"`
	ReceivedBy       uuid.UUID `gorm:"column:received_by;type:uuid;not null"`
	Notes            string    `gorm:"column:notes;type:text"`
}

func (DeliveryLog) TableName() string {
	return "pharmacy.delivery_log"
}

type ListQuery struct {
	PharmacyID uuid.UUID
	LowOnly    bool
	Page       int
	PageSize   int
}

type PagedItems struct {
	Items      []*StockItem
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
