package domain

import (
	"time"

	"github.com/google/uuid"
)

const TargetTypeStudent = "STUDENT"

// AdminAction is an append-only audit entry for an admin decision.
type AdminAction struct {
	ID         uuid.UUID      `json:"id"`
	AdminID    uuid.UUID      `json:"adminId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   uuid.UUID      `json:"targetId"`
	Notes      *string        `json:"notes,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewVerificationAction records a student verification decision.
func NewVerificationAction(adminID uuid.UUID, d Decision, s *StudentProfile, prev VerificationStatus) *AdminAction {
	return &AdminAction{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     string(d) + "_STUDENT_VERIFICATION",
		TargetType: TargetTypeStudent,
		TargetID:   s.ID,
		Notes:      s.VerificationNotes,
		Metadata: map[string]any{
			"previousStatus": string(prev),
			"newStatus":      string(s.Status),
		},
		CreatedAt: time.Now().UTC(),
	}
}
