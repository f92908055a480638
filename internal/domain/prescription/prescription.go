package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/rxdesk/rxdesk/pkg/datemath"
)

// State transitions possibilities:
//
//	pending → ready → collected
//
// A prescription must pass through ready before collection; there are no
// backward edges.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusCollected Status = "collected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReady, StatusCollected:
		return true
	}
	return false
}

// RenewalCategory is derived from the renewal due date and current time,
// never stored.
type RenewalCategory string

const (
	RenewalNone      RenewalCategory = "none"
	RenewalDueSoon   RenewalCategory = "due_soon"
	RenewalOverdue   RenewalCategory = "overdue"
	RenewalCompleted RenewalCategory = "completed"
)

// renewalDueSoonWindowDays is the lead time within which an unrenewed
// prescription counts as due soon.
const renewalDueSoonWindowDays = 7

type Prescription struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`

	PatientName    string     `gorm:"column:patient_name;type:varchar(255);not null;index"`
	PatientDOB     *time.Time `gorm:"column:patient_dob"`
	PatientPhone   string     `gorm:"column:patient_phone;type:varchar(50)"`
	PatientAddress string     `gorm:"column:patient_address;type:text"`

	Medication string `gorm:"column:medication;type:varchar(255);not null;index"`
	Dosage     string `gorm:"column:dosage;type:varchar(100);not null"` // e.g. "500mg twice daily"
	Quantity   int    `gorm:"column:quantity;not null"`
	Prescriber string `gorm:"column:prescriber;type:varchar(255);not null"`

	Status Status `gorm:"column:status;type:varchar(30);not null;default:'pending';index"`

	// DateReady is set iff the prescription has reached ready or later;
	// DateCollected iff it is collected.
	DateCreated   time.Time  `gorm:"column:date_created;not null;index"`
	DateReady     *time.Time `gorm:"column:date_ready"`
	DateCollected *time.Time `gorm:"column:date_collected"`

	RenewalDueDate *time.Time `gorm:"column:renewal_due_date;index"`
	RenewedAt      *time.Time `gorm:"column:renewed_at"`

	InsuranceInfo       string `gorm:"column:insurance_info;type:text"`
	SpecialInstructions string `gorm:"column:special_instructions;type:text"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Prescription) TableName() string {
	return "pharmacy.prescriptions"
}

func (p *Prescription) CanTransitionTo(target Status) bool {
	allowed := map[Status][]Status{
		StatusPending:   {StatusReady},
		StatusReady:     {StatusCollected},
		StatusCollected: {},
	}

	for _, s := range allowed[p.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Apply moves the prescription to target and stamps the matching timestamp.
// Re-applying the current status is a no-op so a double-submitted UI action
// cannot re-stamp a date; changed reports whether anything was mutated.
func (p *Prescription) Apply(target Status, now time.Time) (changed bool, err error) {
	if target == p.Status {
		return false, nil
	}
	if !p.CanTransitionTo(target) {
		return false, ErrInvalidTransition
	}

	p.Status = target
	switch target {
	case StatusReady:
		p.DateReady = &now
	case StatusCollected:
		p.DateCollected = &now
	}
	return true, nil
}

// Renew marks the prescription renewed. Renewal is independent of the
// pickup status machine.
func (p *Prescription) Renew(now time.Time) {
	p.RenewedAt = &now
}

// RenewalStatus categorizes the prescription against its renewal due date.
func (p *Prescription) RenewalStatus(now time.Time) RenewalCategory {
	if p.RenewedAt != nil {
		return RenewalCompleted
	}
	if p.RenewalDueDate == nil {
		return RenewalNone
	}

	days := datemath.DaysUntil(*p.RenewalDueDate, now)
	switch {
	case days < 0:
		return RenewalOverdue
	case days <= renewalDueSoonWindowDays:
		return RenewalDueSoon
	default:
		return RenewalNone
	}
}

type CreateCommand struct {
	PharmacyID          uuid.UUID
	PatientName         string
	PatientDOB          *time.Time
	PatientPhone        string
	PatientAddress      string
	Medication          string
	Dosage              string
	Quantity            int
	Prescriber          string
	RenewalDueDate      *time.Time
	InsuranceInfo       string
	SpecialInstructions string
	CreatedBy           uuid.UUID
}

type ListQuery struct {
	PharmacyID uuid.UUID
	Status     *Status
	Patient    string
	Page       int
	PageSize   int
}

type PagedPrescriptions struct {
	Prescriptions []*Prescription
	TotalCount    int64
	Page          int
	PageSize      int
	TotalPages    int
}
