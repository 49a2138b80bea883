package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// SetRoleRequest is the body of POST /user/role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN STUDENT DONOR" example:"DONOR"`
}

// SetRoleResponse carries the refreshed session token.
type SetRoleResponse struct {
	Role  string `json:"role"`
	Token string `json:"token"`
}

// DonorProfileRequest is the body of POST /user/donor-profile.
type DonorProfileRequest struct {
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Company     *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	IsAnonymous bool    `json:"isAnonymous"`
}

// StudentProfileRequest is the body of POST /user/student-profile.
// InterestRate is a percent, e.g. 5.5.
type StudentProfileRequest struct {
	FirstName        string           `json:"firstName" validate:"required,max=100"`
	LastName         string           `json:"lastName" validate:"required,max=100"`
	DateOfBirth      time.Time        `json:"dateOfBirth" validate:"required"`
	Phone            *string          `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address          string           `json:"address" validate:"required"`
	City             string           `json:"city" validate:"required,max=100"`
	State            string           `json:"state" validate:"required,max=64"`
	ZipCode          string           `json:"zipCode" validate:"required,max=16"`
	SchoolName       string           `json:"schoolName" validate:"required"`
	Major            string           `json:"major" validate:"required"`
	GraduationDate   *time.Time       `json:"graduationDate,omitempty"`
	GPA              *decimal.Decimal `json:"gpa,omitempty" swaggertype:"number"`
	TotalDebtAmount  decimal.Decimal  `json:"totalDebtAmount" swaggertype:"number"`
	MonthlyPayment   *decimal.Decimal `json:"monthlyPayment,omitempty" swaggertype:"number"`
	InterestRate     *decimal.Decimal `json:"interestRate,omitempty" swaggertype:"number"`
	LoanServicer     *string          `json:"loanServicer,omitempty"`
	EmploymentStatus *string          `json:"employmentStatus,omitempty"`
	AnnualIncome     *decimal.Decimal `json:"annualIncome,omitempty" swaggertype:"number"`
	DisplayName      string           `json:"displayName" validate:"required,max=100"`
	Bio              string           `json:"bio" validate:"required"`
}
