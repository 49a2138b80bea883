package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// StudentProfile is a student's debt profile and its admin-controlled trust state.
type StudentProfile struct {
	ID                   uuid.UUID          `json:"id"`
	UserID               uuid.UUID          `json:"userId"`
	FirstName            string             `json:"firstName"`
	LastName             string             `json:"lastName"`
	DateOfBirth          time.Time          `json:"dateOfBirth"`
	Phone                *string            `json:"phone,omitempty"`
	Address              string             `json:"address"`
	City                 string             `json:"city"`
	State                string             `json:"state"`
	ZipCode              string             `json:"zipCode"`
	SchoolName           string             `json:"schoolName"`
	Major                string             `json:"major"`
	GraduationDate       *time.Time         `json:"graduationDate,omitempty"`
	GPA                  *decimal.Decimal   `json:"gpa,omitempty"`
	TotalDebtAmount      decimal.Decimal    `json:"totalDebtAmount"`
	MonthlyPayment       *decimal.Decimal   `json:"monthlyPayment,omitempty"`
	InterestRate         *decimal.Decimal   `json:"interestRate,omitempty"`
	LoanServicer         *string            `json:"loanServicer,omitempty"`
	EmploymentStatus     *string            `json:"employmentStatus,omitempty"`
	AnnualIncome         *decimal.Decimal   `json:"annualIncome,omitempty"`
	DisplayName          string             `json:"displayName"`
	Bio                  string             `json:"bio"`
	IsPublic             bool               `json:"isPublic"`
	AllowDirectDonations bool               `json:"allowDirectDonations"`
	Status               VerificationStatus `json:"verificationStatus"`
	VerifiedAt           *time.Time         `json:"verifiedAt,omitempty"`
	VerifiedBy           *uuid.UUID         `json:"verifiedBy,omitempty"`
	VerificationNotes    *string            `json:"verificationNotes,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
}

// FullName joins first and last name.
func (s *StudentProfile) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsVerified reports whether the student can receive direct donations.
func (s *StudentProfile) IsVerified() bool {
	return s.Status == VerificationVerified
}

// ApplyDecision moves the profile to VERIFIED or REJECTED and returns the
// status it had before.
func (s *StudentProfile) ApplyDecision(d Decision, adminID uuid.UUID, notes *string, now time.Time) (VerificationStatus, error) {
	prev := s.Status
	switch d {
	case DecisionApprove:
		s.Status = VerificationVerified
		s.VerifiedAt = &now
	case DecisionReject:
		s.Status = VerificationRejected
		s.VerifiedAt = nil
	default:
		return prev, fmt.Errorf("%w: %q", ErrInvalidDecision, d)
	}
	s.VerifiedBy = &adminID
	s.VerificationNotes = notes
	return prev, nil
}

// PercentToRate converts an interest rate entered as a percent to a fraction.
func PercentToRate(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(decimal.NewFromInt(100))
}
