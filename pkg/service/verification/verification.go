// Package verification records admin decisions on student profiles.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
)

type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger, now: time.Now}
}

// Decide applies an APPROVE or REJECT decision. The status change, the audit
// entry and the student's notification commit together or not at all.
func (s *Service) Decide(
	ctx context.Context,
	adminID uuid.UUID,
	studentID uuid.UUID,
	decision domain.Decision,
	notes *string,
) (*domain.StudentProfile, error) {
	const op = "verification.Decide"
	log := s.logger.With("handler", "VerifyStudent", "adminID", adminID, "studentID", studentID, "decision", decision)

	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, fmt.Errorf("%s: %w: %q", op, domain.ErrInvalidDecision, decision)
	}

	var student *domain.StudentProfile
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		st, err := uow.StudentRepository().Get(ctx, studentID)
		if err != nil {
			return err
		}
		prev, err := st.ApplyDecision(decision, adminID, notes, s.now().UTC())
		if err != nil {
			return err
		}
		if err := uow.StudentRepository().UpdateVerification(ctx, st); err != nil {
			return err
		}
		if err := uow.AdminActionRepository().Create(ctx, domain.NewVerificationAction(adminID, decision, st, prev)); err != nil {
			return err
		}
		if err := uow.NotificationRepository().Create(ctx, domain.VerificationNotification(st)); err != nil {
			return err
		}
		student = st
		log = log.With("previousStatus", prev, "newStatus", st.Status)
		return nil
	})
	if err != nil {
		log.Error("failed to apply verification decision", "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("🛂 Verification decision recorded")
	return student, nil
}

// ListByStatus returns the students awaiting or past review.
func (s *Service) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]*domain.StudentProfile, error) {
	switch status {
	case domain.VerificationPending, domain.VerificationVerified, domain.VerificationRejected:
	default:
		return nil, fmt.Errorf("%w: unknown verification status %q", domain.ErrValidation, status)
	}
	return s.uow.StudentRepository().ListByStatus(ctx, status)
}
