package verification_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/studentrelief/infra/repository"
	"github.com/amirasaad/studentrelief/internal/fixtures/testdb"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/service/verification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*verification.Service, *repository.UoW, *gorm.DB) {
	t.Helper()
	uow, db := testdb.NewUoW(t)
	return verification.New(uow, slog.New(slog.NewTextHandler(io.Discard, nil))), uow, db
}

func TestDecide_Approve(t *testing.T) {
	svc, uow, _ := setup(t)
	ctx := context.Background()
	admin := testdb.SeedUser(t, uow, domain.RoleAdmin)
	studentUser, student := testdb.SeedStudent(t, uow, domain.VerificationPending)

	got, err := svc.Decide(ctx, admin.ID, student.ID, domain.DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, got.Status)
	require.NotNil(t, got.VerifiedAt)
	assert.Equal(t, &admin.ID, got.VerifiedBy)

	stored, err := uow.StudentRepository().Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, stored.Status)
	assert.NotNil(t, stored.VerifiedAt)

	actions, err := uow.AdminActionRepository().ListByTarget(ctx, domain.TargetTypeStudent, student.ID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "APPROVE_STUDENT_VERIFICATION", actions[0].Action)
	assert.Equal(t, admin.ID, actions[0].AdminID)
	assert.Equal(t, "PENDING", actions[0].Metadata["previousStatus"])
	assert.Equal(t, "VERIFIED", actions[0].Metadata["newStatus"])

	notes, err := uow.NotificationRepository().ListByUser(ctx, studentUser.ID, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Verification Approved", notes[0].Title)
	assert.Equal(t, domain.NotificationVerificationStatus, notes[0].Type)
}

func TestDecide_RejectWithNotes(t *testing.T) {
	svc, uow, _ := setup(t)
	ctx := context.Background()
	admin := testdb.SeedUser(t, uow, domain.RoleAdmin)
	studentUser, student := testdb.SeedStudent(t, uow, domain.VerificationVerified)
	reason := "Loan statement is unreadable"

	got, err := svc.Decide(ctx, admin.ID, student.ID, domain.DecisionReject, &reason)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationRejected, got.Status)
	assert.Nil(t, got.VerifiedAt)
	require.NotNil(t, got.VerificationNotes)
	assert.Equal(t, reason, *got.VerificationNotes)

	stored, err := uow.StudentRepository().Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.VerifiedAt)

	actions, err := uow.AdminActionRepository().ListByTarget(ctx, domain.TargetTypeStudent, student.ID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "VERIFIED", actions[0].Metadata["previousStatus"])
	assert.Equal(t, "REJECTED", actions[0].Metadata["newStatus"])

	notes, err := uow.NotificationRepository().ListByUser(ctx, studentUser.ID, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Your verification was not approved. "+reason, notes[0].Message)
}

func TestDecide_StudentNotFound(t *testing.T) {
	svc, uow, db := setup(t)
	admin := testdb.SeedUser(t, uow, domain.RoleAdmin)

	_, err := svc.Decide(context.Background(), admin.ID, uuid.New(), domain.DecisionApprove, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var n int64
	require.NoError(t, db.Table("admin_actions").Count(&n).Error)
	assert.Zero(t, n)
}

func TestDecide_InvalidDecision(t *testing.T) {
	svc, uow, _ := setup(t)
	ctx := context.Background()
	admin := testdb.SeedUser(t, uow, domain.RoleAdmin)
	_, student := testdb.SeedStudent(t, uow, domain.VerificationPending)

	_, err := svc.Decide(ctx, admin.ID, student.ID, "ESCALATE", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDecision)

	stored, err := uow.StudentRepository().Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, stored.Status)
}

func TestListByStatus(t *testing.T) {
	svc, uow, _ := setup(t)
	ctx := context.Background()
	_, pending := testdb.SeedStudent(t, uow, domain.VerificationPending)
	testdb.SeedStudent(t, uow, domain.VerificationVerified)

	list, err := svc.ListByStatus(ctx, domain.VerificationPending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	_, err = svc.ListByStatus(ctx, "ARCHIVED")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
