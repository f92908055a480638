package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RolePharmacist Role = "pharmacist"
	RoleTechnician Role = "technician"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePharmacist, RoleTechnician:
		return true
	}
	return false
}

// Capabilities groups the permission flags a role grants. Checks are a flat
// table lookup, not role inheritance.
type Capabilities struct {
	CanDeleteUsers       bool
	CanEditSettings      bool
	CanManageInventory   bool
	CanSendNotifications bool
}

var roleCapabilities = map[Role]Capabilities{
	RoleAdmin: {
		CanDeleteUsers:       true,
		CanEditSettings:      true,
		CanManageInventory:   true,
		CanSendNotifications: true,
	},
	RolePharmacist: {
		CanManageInventory:   true,
		CanSendNotifications: true,
	},
	RoleTechnician: {},
}

// CapabilitiesFor returns the capability set for a role. Unknown roles get
// the empty set.
func CapabilitiesFor(r Role) Capabilities {
	return roleCapabilities[r]
}

// Actor identifies who is performing an operation. Services take it as an
// explicit parameter; there is no ambient session state.
type Actor struct {
	UserID     uuid.UUID
	PharmacyID uuid.UUID
	Role       Role
}

func (a Actor) Can(check func(Capabilities) bool) bool {
	return check(CapabilitiesFor(a.Role))
}

type UserProfile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`

	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	FirstName    string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName     string `gorm:"column:last_name;type:varchar(100);not null"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index"`

	IsActive         bool       `gorm:"column:is_active;default:true;index"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
}

func (UserProfile) TableName() string {
	return "auth.user_profiles"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *UserProfile) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

type OrganizationSettings struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;uniqueIndex"`

	Name          string `gorm:"column:name;type:varchar(255);not null"`
	LicenseNumber string `gorm:"column:license_number;type:varchar(100)"`
	Address       string `gorm:"column:address;type:text"`
	Phone         string `gorm:"column:phone;type:varchar(50)"`
	Email         string `gorm:"column:email;type:varchar(255)"`
}

func (OrganizationSettings) TableName() string {
	return "pharmacy.organization_settings"
}

type NotificationSettings struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;uniqueIndex"`

	SMSEnabled   bool `gorm:"column:sms_enabled;default:true"`
	EmailEnabled bool `gorm:"column:email_enabled;default:true"`

	ReadyPickupSMSTemplate       string `gorm:"column:ready_pickup_sms_template;type:text"`
	ReadyPickupEmailTemplate     string `gorm:"column:ready_pickup_email_template;type:text"`
	OverdueReminderSMSTemplate   string `gorm:"column:overdue_reminder_sms_template;type:text"`
	OverdueReminderEmailTemplate string `gorm:"column:overdue_reminder_email_template;type:text"`
	SpecialOrderSMSTemplate      string `gorm:"column:special_order_sms_template;type:text"`
	SpecialOrderEmailTemplate    string `gorm:"column:special_order_email_template;type:text"`
}

func (NotificationSettings) TableName() string {
	return "pharmacy.notification_settings"
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	UserRole   Role      `gorm:"column:user_role;type:varchar(30);not null"`
	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	IPAddress  string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID     uuid.UUID `json:"sub"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	PharmacyID uuid.UUID `json:"pharmacy_id"`
}
