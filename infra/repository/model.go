package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JSONMap stores free-form metadata as a JSON document.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("JSONMap: unsupported source %T", src)
	}
	return json.Unmarshal(raw, m)
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	Name      string    `gorm:"size:255"`
	Role      string    `gorm:"type:varchar(16);index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

type DonorProfile struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	FirstName        string    `gorm:"size:100;not null"`
	LastName         string    `gorm:"size:100;not null"`
	Company          *string   `gorm:"size:255"`
	Phone            *string   `gorm:"size:32"`
	IsAnonymous      bool      `gorm:"not null;default:false"`
	StripeCustomerID *string   `gorm:"column:stripe_customer_id;size:255"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (DonorProfile) TableName() string { return "donor_profiles" }

type StudentProfile struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID               uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null"`
	FirstName            string           `gorm:"size:100;not null"`
	LastName             string           `gorm:"size:100;not null"`
	DateOfBirth          time.Time        `gorm:"not null"`
	Phone                *string          `gorm:"size:32"`
	Address              string           `gorm:"not null"`
	City                 string           `gorm:"size:100;not null"`
	State                string           `gorm:"size:64;not null"`
	ZipCode              string           `gorm:"size:16;not null"`
	SchoolName           string           `gorm:"not null"`
	Major                string           `gorm:"not null"`
	GraduationDate       *time.Time
	GPA                  *decimal.Decimal `gorm:"column:gpa;type:numeric(3,2)"`
	TotalDebtAmount      decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	MonthlyPayment       *decimal.Decimal `gorm:"type:numeric(12,2)"`
	InterestRate         *decimal.Decimal `gorm:"type:numeric(6,5)"`
	LoanServicer         *string
	EmploymentStatus     *string
	AnnualIncome         *decimal.Decimal `gorm:"type:numeric(12,2)"`
	DisplayName          string           `gorm:"size:100;not null"`
	Bio                  string           `gorm:"not null"`
	IsPublic             bool             `gorm:"not null;default:false"`
	AllowDirectDonations bool             `gorm:"not null"`
	VerificationStatus   string           `gorm:"type:varchar(16);not null;default:'PENDING';index"`
	VerifiedAt           *time.Time
	VerifiedBy           *uuid.UUID       `gorm:"type:uuid"`
	VerificationNotes    *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (StudentProfile) TableName() string { return "student_profiles" }

type GroupCampaign struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Name            string           `gorm:"size:255;not null"`
	Description     string           `gorm:"not null"`
	TargetAmount    decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	CurrentAmount   decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	IsActive        bool             `gorm:"not null;index"`
	IsTaxDeductible bool             `gorm:"not null;default:false"`
	StartDate       time.Time        `gorm:"not null"`
	EndDate         *time.Time
	Members         []CampaignMember `gorm:"foreignKey:CampaignID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (GroupCampaign) TableName() string { return "group_campaigns" }

type CampaignMember struct {
	CampaignID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StudentID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AllocationPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
}

func (CampaignMember) TableName() string { return "campaign_members" }

type Donation struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DonorID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	StudentID       *uuid.UUID      `gorm:"type:uuid;index"`
	GroupCampaignID *uuid.UUID      `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Type            string          `gorm:"type:varchar(32);not null"`
	IsAnonymous     bool            `gorm:"not null;default:false"`
	Message         *string
	PaymentIntentID string          `gorm:"column:payment_intent_id;size:255;uniqueIndex;not null"`
	ChargeID        *string         `gorm:"column:charge_id;size:255"`
	Status          string          `gorm:"type:varchar(16);not null;default:'PENDING';index"`
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Donation) TableName() string { return "donations" }

type Document struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Type       string    `gorm:"type:varchar(32);not null"`
	FileName   string    `gorm:"size:255;not null"`
	FileURL    string    `gorm:"column:file_url;not null"`
	FileSize   int64     `gorm:"not null"`
	MimeType   string    `gorm:"size:127;not null"`
	Status     string    `gorm:"type:varchar(16);not null;default:'PENDING'"`
	UploadedAt time.Time `gorm:"not null"`
}

func (Document) TableName() string { return "documents" }

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"size:255;not null"`
	Message   string    `gorm:"not null"`
	Type      string    `gorm:"type:varchar(32);not null"`
	Metadata  JSONMap   `gorm:"type:jsonb"`
	IsRead    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (Notification) TableName() string { return "notifications" }

type AdminAction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	AdminID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Action     string    `gorm:"size:64;not null"`
	TargetType string    `gorm:"size:32;not null"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Notes      *string
	Metadata   JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

func (AdminAction) TableName() string { return "admin_actions" }

type WebhookEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Provider   string    `gorm:"size:32;not null;uniqueIndex:idx_webhook_events_provider_event"`
	EventID    string    `gorm:"size:255;not null;uniqueIndex:idx_webhook_events_provider_event"`
	EventType  string    `gorm:"size:128;not null"`
	ReceivedAt time.Time `gorm:"not null"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

// Models lists every table for schema bootstrapping in tests and local runs.
func Models() []any {
	return []any{
		&User{},
		&DonorProfile{},
		&StudentProfile{},
		&GroupCampaign{},
		&CampaignMember{},
		&Donation{},
		&Document{},
		&Notification{},
		&AdminAction{},
		&WebhookEvent{},
	}
}
