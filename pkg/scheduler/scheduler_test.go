package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/studentrelief/internal/fixtures/mocks"
	"github.com/amirasaad/studentrelief/internal/fixtures/testdb"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/amirasaad/studentrelief/pkg/scheduler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubExpirer struct {
	calls int
	err   error
}

func (s *stubExpirer) ExpireCampaigns(context.Context) (int64, error) {
	s.calls++
	return 1, s.err
}

func TestAuditStalePending_ReportsTerminalOnlyAndNeverMutates(t *testing.T) {
	uow, db := testdb.NewUoW(t)
	gw := mocks.NewMockGateway(t)
	ctx := context.Background()
	_, donor := testdb.SeedDonor(t, uow)

	old := time.Now().Add(-3 * time.Hour).UTC()
	for _, pi := range []string{"pi_done", "pi_wait", "pi_err"} {
		d := domain.NewDonation(donor.ID, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund}, pi)
		d.CreatedAt = old
		require.NoError(t, uow.DonationRepository().Create(ctx, d))
	}
	fresh := domain.NewDonation(donor.ID, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund}, "pi_fresh")
	require.NoError(t, uow.DonationRepository().Create(ctx, fresh))

	gw.On("GetPaymentIntent", ctx, "pi_done").Return(&payment.PaymentIntent{ID: "pi_done", Status: payment.PaymentCompleted}, nil).Once()
	gw.On("GetPaymentIntent", ctx, "pi_wait").Return(&payment.PaymentIntent{ID: "pi_wait", Status: payment.PaymentPending}, nil).Once()
	gw.On("GetPaymentIntent", ctx, "pi_err").Return(nil, errors.New("rate limited")).Once()

	jobs := scheduler.NewJobs(uow, gw, &stubExpirer{}, time.Hour, 10, discardLogger())
	stale, err := jobs.AuditStalePending(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "pi_done", stale[0].PaymentIntentID)
	assert.Equal(t, payment.PaymentCompleted, stale[0].GatewayStatus)

	var pending int64
	require.NoError(t, db.Table("donations").Where("status = ?", "PENDING").Count(&pending).Error)
	assert.Equal(t, int64(4), pending)
}

func TestAuditStalePending_FlagsFailedDonationCapturedOnRetry(t *testing.T) {
	uow, db := testdb.NewUoW(t)
	gw := mocks.NewMockGateway(t)
	ctx := context.Background()
	_, donor := testdb.SeedDonor(t, uow)

	old := time.Now().Add(-3 * time.Hour).UTC()
	for _, pi := range []string{"pi_retried", "pi_declined"} {
		d := domain.NewDonation(donor.ID, domain.DonationRequest{Amount: decimal.NewFromInt(25), Type: domain.DonationTypeGeneralFund}, pi)
		d.CreatedAt = old
		require.NoError(t, uow.DonationRepository().Create(ctx, d))
		_, err := uow.DonationRepository().MarkFailed(ctx, pi)
		require.NoError(t, err)
	}

	gw.On("GetPaymentIntent", ctx, "pi_retried").Return(&payment.PaymentIntent{ID: "pi_retried", Status: payment.PaymentCompleted}, nil).Once()
	gw.On("GetPaymentIntent", ctx, "pi_declined").Return(&payment.PaymentIntent{ID: "pi_declined", Status: payment.PaymentFailed}, nil).Once()

	jobs := scheduler.NewJobs(uow, gw, &stubExpirer{}, time.Hour, 10, discardLogger())
	stale, err := jobs.AuditStalePending(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "pi_retried", stale[0].PaymentIntentID)
	assert.Equal(t, domain.DonationFailed, stale[0].LocalStatus)
	assert.Equal(t, payment.PaymentCompleted, stale[0].GatewayStatus)

	var failed int64
	require.NoError(t, db.Table("donations").Where("status = ?", "FAILED").Count(&failed).Error)
	assert.Equal(t, int64(2), failed)
}

func TestJobs_ExpireCampaignsSwallowsErrors(t *testing.T) {
	uow, _ := testdb.NewUoW(t)
	exp := &stubExpirer{err: errors.New("db down")}
	jobs := scheduler.NewJobs(uow, mocks.NewMockGateway(t), exp, time.Hour, 0, discardLogger())

	assert.NotPanics(t, jobs.ExpireCampaigns)
	assert.Equal(t, 1, exp.calls)
}

func TestScheduler_StartAndStop(t *testing.T) {
	uow, _ := testdb.NewUoW(t)
	jobs := scheduler.NewJobs(uow, mocks.NewMockGateway(t), &stubExpirer{}, time.Hour, 0, discardLogger())

	s := scheduler.New(jobs, &config.Scheduler{CampaignExpiry: "@every 1h", PendingAudit: "@every 15m"}, discardLogger())
	require.NoError(t, s.Start())
	assert.Equal(t, 2, s.Entries())
	<-s.Stop().Done()
}

func TestScheduler_DisabledJobAndInvalidSchedule(t *testing.T) {
	uow, _ := testdb.NewUoW(t)
	jobs := scheduler.NewJobs(uow, mocks.NewMockGateway(t), &stubExpirer{}, time.Hour, 0, discardLogger())

	s := scheduler.New(jobs, &config.Scheduler{CampaignExpiry: "@every 1h"}, discardLogger())
	require.NoError(t, s.Start())
	assert.Equal(t, 1, s.Entries())
	<-s.Stop().Done()

	bad := scheduler.New(jobs, &config.Scheduler{CampaignExpiry: "every tuesday"}, discardLogger())
	assert.Error(t, bad.Start())
}
