package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/rxdesk/rxdesk/pkg/datemath"
)

type OrderType string

const (
	TypeSpecialOrder OrderType = "special_order"
	TypeMissedPickup OrderType = "missed_pickup"
	TypeBackOrder    OrderType = "back_order"
)

func (t OrderType) IsValid() bool {
	switch t {
	case TypeSpecialOrder, TypeMissedPickup, TypeBackOrder:
		return true
	}
	return false
}

// State transitions possibilities:
//
//	awaiting_arrival → ready_for_collection → collected
//
// Overdue is never a stored status: it is derived from the age of ArrivedAt
// while an order sits in ready_for_collection. Older rows written by a
// previous version may still carry the literal "overdue"; Normalize maps
// them back to ready_for_collection on read.
type Status string

const (
	StatusAwaitingArrival    Status = "awaiting_arrival"
	StatusReadyForCollection Status = "ready_for_collection"
	StatusCollected          Status = "collected"

	// legacyStatusOverdue existed as a stored value in the old schema.
	legacyStatusOverdue Status = "overdue"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAwaitingArrival, StatusReadyForCollection, StatusCollected:
		return true
	}
	return false
}

// Normalize maps legacy stored values onto the canonical status set.
func (s Status) Normalize() Status {
	if s == legacyStatusOverdue {
		return StatusReadyForCollection
	}
	return s
}

// Severity is the row-highlight level for an order awaiting pickup.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Pickup age thresholds, in days since arrival.
const (
	warningAfterDays  = 3
	criticalAfterDays = 7
)

type CustomerOrder struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`

	CustomerName  string `gorm:"column:customer_name;type:varchar(255);not null;index"`
	CustomerPhone string `gorm:"column:customer_phone;type:varchar(50)"`

	ItemName  string    `gorm:"column:item_name;type:varchar(255);not null"`
	OrderType OrderType `gorm:"column:order_type;type:varchar(30);not null;index"`

	Status Status `gorm:"column:status;type:varchar(30);not null;default:'awaiting_arrival';index"`

	// ArrivedAt is set iff the order has reached ready_for_collection or
	// later; CollectedAt iff it is collected. NotifiedAt is independent of
	// status but only meaningful once the item has arrived.
	DateOrdered  time.Time  `gorm:"column:date_ordered;not null;index"`
	ExpectedDate *time.Time `gorm:"column:expected_date"`
	ArrivedAt    *time.Time `gorm:"column:arrived_at"`
	NotifiedAt   *time.Time `gorm:"column:notified_at"`
	CollectedAt  *time.Time `gorm:"column:collected_at"`

	Notes string `gorm:"column:notes;type:text"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (CustomerOrder) TableName() string {
	return "pharmacy.customer_orders"
}

func (o *CustomerOrder) CanTransitionTo(target Status) bool {
	allowed := map[Status][]Status{
		StatusAwaitingArrival:    {StatusReadyForCollection},
		StatusReadyForCollection: {StatusCollected},
		StatusCollected:          {},
	}

	for _, s := range allowed[o.Status.Normalize()] {
		if s == target {
			return true
		}
	}
	return false
}

// Apply moves the order to target and stamps the matching timestamp.
// Re-applying the current status is a no-op; changed reports whether
// anything was mutated.
func (o *CustomerOrder) Apply(target Status, now time.Time) (changed bool, err error) {
	if target == o.Status.Normalize() {
		o.Status = target
		return false, nil
	}
	if !o.CanTransitionTo(target) {
		return false, ErrInvalidTransition
	}

	o.Status = target
	switch target {
	case StatusReadyForCollection:
		o.ArrivedAt = &now
	case StatusCollected:
		o.CollectedAt = &now
	}
	return true, nil
}

// MarkNotified records that the customer was told their item is in. The
// item must have arrived first.
func (o *CustomerOrder) MarkNotified(now time.Time) error {
	if o.ArrivedAt == nil {
		return ErrNotArrived
	}
	o.NotifiedAt = &now
	return nil
}

// PickupSeverity grades how long a ready order has sat uncollected. It only
// applies while the order is ready_for_collection with a known arrival time;
// every other state is SeverityNone.
func (o *CustomerOrder) PickupSeverity(now time.Time) Severity {
	if o.Status.Normalize() != StatusReadyForCollection || o.ArrivedAt == nil {
		return SeverityNone
	}

	days := datemath.DaysOverdue(*o.ArrivedAt, now)
	switch {
	case days >= criticalAfterDays:
		return SeverityCritical
	case days >= warningAfterDays:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

type CreateCommand struct {
	PharmacyID    uuid.UUID
	CustomerName  string
	CustomerPhone string
	ItemName      string
	OrderType     OrderType
	ExpectedDate  *time.Time
	Notes         string
	CreatedBy     uuid.UUID
}

type ListQuery struct {
	PharmacyID uuid.UUID
	Status     *Status
	OrderType  *OrderType
	Page       int
	PageSize   int
}

type PagedOrders struct {
	Orders     []*CustomerOrder
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
