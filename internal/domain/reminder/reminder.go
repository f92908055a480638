package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelPhone:
		return true
	}
	return false
}

type Type string

const (
	TypeRenewalReminder Type = "renewal_reminder"
	TypeReadyPickup     Type = "ready_pickup"
	TypeOverduePickup   Type = "overdue_pickup"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeRenewalReminder, TypeReadyPickup, TypeOverduePickup:
		return true
	}
	return false
}

// Event is an append-only record of an outbound reminder. Rows are never
// updated after insert; corrections are new events.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	PharmacyID     uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	PrescriptionID uuid.UUID `gorm:"column:prescription_id;type:uuid;not null;index"`

	Channel Channel `gorm:"column:channel;type:varchar(20);not null"`
	Type    Type    `gorm:"column:reminder_type;type:varchar(30);not null;index"`

	SentAt time.Time `gorm:"column:sent_at;not null;index"`
	SentBy uuid.UUID `gorm:"column:sent_by;type:uuid;not null"`

	Notes string `gorm:"column:notes;type:text"`
}

func (Event) TableName() string {
	return "pharmacy.reminder_events"
}

type Repository interface {
	Append(ctx context.Context, e *Event) error
	ListByPrescription(ctx context.Context, pharmacyID, prescriptionID uuid.UUID) ([]*Event, error)
}
