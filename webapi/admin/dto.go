package admin

import (
	"github.com/google/uuid"
)

// VerifyStudentRequest is the body of POST /admin/verify-student.
type VerifyStudentRequest struct {
	StudentID uuid.UUID `json:"studentId" validate:"required" swaggertype:"string"`
	Action    string    `json:"action" validate:"required,oneof=APPROVE REJECT" example:"APPROVE"`
	Notes     *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
