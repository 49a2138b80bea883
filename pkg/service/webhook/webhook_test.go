package webhook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/studentrelief/infra/provider/mockpayment"
	"github.com/amirasaad/studentrelief/infra/repository"
	"github.com/amirasaad/studentrelief/internal/fixtures/mocks"
	"github.com/amirasaad/studentrelief/internal/fixtures/testdb"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/handler/common"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/amirasaad/studentrelief/pkg/service/webhook"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc     *webhook.Service
	gateway *mockpayment.MockPaymentProvider
	uow     *repository.UoW
	db      *gorm.DB
	bus     *mocks.MockBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	uow, db := testdb.NewUoW(t)
	gw := mockpayment.NewMockPaymentProvider()
	bus := mocks.NewMockBus(t)
	svc := webhook.New(uow, gw, common.NewIdempotencyTracker(), bus, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{svc: svc, gateway: gw, uow: uow, db: db, bus: bus}
}

// pendingDonation stores a PENDING donation of amount bound to a fresh intent.
func (f *fixture) pendingDonation(t *testing.T, req domain.DonationRequest) *domain.Donation {
	t.Helper()
	_, donor := testdb.SeedDonor(t, f.uow)
	pi, err := f.gateway.CreatePaymentIntent(context.Background(), &payment.CreatePaymentIntentParams{
		AmountCents: domain.ToCents(req.Amount),
	})
	require.NoError(t, err)
	d := domain.NewDonation(donor.ID, req, pi.ID)
	require.NoError(t, f.uow.DonationRepository().Create(context.Background(), d))
	return d
}

func (f *fixture) donation(t *testing.T, pi string) *domain.Donation {
	t.Helper()
	d, err := f.uow.DonationRepository().GetByPaymentIntentID(context.Background(), pi)
	require.NoError(t, err)
	return d
}

// requireCampaignMatchesLedger checks the stored campaign total against the
// sum of its COMPLETED donations.
func (f *fixture) requireCampaignMatchesLedger(t *testing.T, campaignID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	c, err := f.uow.CampaignRepository().Get(ctx, campaignID)
	require.NoError(t, err)
	sum, err := f.uow.DonationRepository().SumCompletedForCampaign(ctx, campaignID)
	require.NoError(t, err)
	assert.True(t, c.CurrentAmount.Equal(sum), "currentAmount %s, completed donations %s", c.CurrentAmount, sum)
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestProcess_SucceededCampaignDonation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := testdb.SeedCampaign(t, f.uow, true, nil)
	d := f.pendingDonation(t, domain.DonationRequest{
		Amount:          decimal.RequireFromString("75.50"),
		Type:            domain.DonationTypeGroupCampaign,
		GroupCampaignID: &campaign.ID,
	})
	f.bus.On("Emit", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		dc, ok := e.(*events.DonationCompleted)
		return ok && dc.Donation.ID == d.ID
	})).Return(nil).Once()

	payload, sig := f.gateway.Complete("evt_1", d.PaymentIntentID, "ch_1")
	evt, err := f.svc.Process(ctx, payload, sig)
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookPaymentSucceeded, evt.Kind)

	got := f.donation(t, d.PaymentIntentID)
	assert.Equal(t, domain.DonationCompleted, got.Status)
	require.NotNil(t, got.ChargeID)
	assert.Equal(t, "ch_1", *got.ChargeID)
	assert.NotNil(t, got.ProcessedAt)

	c, err := f.uow.CampaignRepository().Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, c.CurrentAmount.Equal(decimal.RequireFromString("75.50")), "got %s", c.CurrentAmount)
}

func TestProcess_DuplicateDeliveryAppliesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := testdb.SeedCampaign(t, f.uow, true, nil)
	d := f.pendingDonation(t, domain.DonationRequest{
		Amount:          decimal.NewFromInt(40),
		Type:            domain.DonationTypeGroupCampaign,
		GroupCampaignID: &campaign.ID,
	})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

	payload, sig := f.gateway.Complete("evt_dup", d.PaymentIntentID, "ch_1")
	for range 3 {
		_, err := f.svc.Process(ctx, payload, sig)
		require.NoError(t, err)
	}

	c, err := f.uow.CampaignRepository().Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, c.CurrentAmount.Equal(decimal.NewFromInt(40)), "got %s", c.CurrentAmount)
	assert.Equal(t, int64(1), countRows(t, f.db, "webhook_events"))
	f.requireCampaignMatchesLedger(t, campaign.ID)
}

func TestProcess_DistinctEventsForSameIntentApplyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := testdb.SeedCampaign(t, f.uow, true, nil)
	d := f.pendingDonation(t, domain.DonationRequest{
		Amount:          decimal.NewFromInt(40),
		Type:            domain.DonationTypeGroupCampaign,
		GroupCampaignID: &campaign.ID,
	})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

	for _, id := range []string{"evt_a", "evt_b"} {
		payload, sig := f.gateway.Complete(id, d.PaymentIntentID, "ch_1")
		_, err := f.svc.Process(ctx, payload, sig)
		require.NoError(t, err)
	}

	c, err := f.uow.CampaignRepository().Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, c.CurrentAmount.Equal(decimal.NewFromInt(40)), "got %s", c.CurrentAmount)
}

func TestProcess_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := testdb.SeedCampaign(t, f.uow, true, nil)
	d := f.pendingDonation(t, domain.DonationRequest{
		Amount:          decimal.NewFromInt(25),
		Type:            domain.DonationTypeGroupCampaign,
		GroupCampaignID: &campaign.ID,
	})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

	payload, sig := f.gateway.Complete("evt_race", d.PaymentIntentID, "ch_1")
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Process(ctx, payload, sig)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := f.uow.CampaignRepository().Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, c.CurrentAmount.Equal(decimal.NewFromInt(25)), "got %s", c.CurrentAmount)
	f.requireCampaignMatchesLedger(t, campaign.ID)
}

func TestProcess_IndividualNotifiesStudentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	studentUser, student := testdb.SeedStudent(t, f.uow, domain.VerificationVerified)
	d := f.pendingDonation(t, domain.DonationRequest{
		Amount:    decimal.NewFromInt(50),
		Type:      domain.DonationTypeIndividualStudent,
		StudentID: &student.ID,
	})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

	payload, sig := f.gateway.Complete("evt_ind", d.PaymentIntentID, "ch_2")
	_, err := f.svc.Process(ctx, payload, sig)
	require.NoError(t, err)

	list, err := f.uow.NotificationRepository().ListByUser(ctx, studentUser.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Donation Received", list[0].Title)
	assert.Equal(t, "You received a $50 donation!", list[0].Message)
	assert.Equal(t, domain.NotificationDonationReceived, list[0].Type)

	none, err := f.uow.NotificationRepository().ListByUser(ctx, student.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, none, "notification must be addressed to the user, not the profile")
}

func TestProcess_GeneralFundHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.pendingDonation(t, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

	payload, sig := f.gateway.Complete("evt_gf", d.PaymentIntentID, "")
	_, err := f.svc.Process(ctx, payload, sig)
	require.NoError(t, err)

	got := f.donation(t, d.PaymentIntentID)
	assert.Equal(t, domain.DonationCompleted, got.Status)
	assert.Nil(t, got.ChargeID)
	assert.Zero(t, countRows(t, f.db, "notifications"))
}

func TestProcess_Failed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.pendingDonation(t, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund})

	payload, sig := f.gateway.Fail("evt_fail", d.PaymentIntentID)
	_, err := f.svc.Process(ctx, payload, sig)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationFailed, f.donation(t, d.PaymentIntentID).Status)

	// a late success for a failed intent does not resurrect it
	payload, sig = f.gateway.Complete("evt_late", d.PaymentIntentID, "ch_9")
	_, err = f.svc.Process(ctx, payload, sig)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationFailed, f.donation(t, d.PaymentIntentID).Status)
}

func TestProcess_FailedAfterCompletedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.pendingDonation(t, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

	payload, sig := f.gateway.Complete("evt_ok", d.PaymentIntentID, "ch_1")
	_, err := f.svc.Process(ctx, payload, sig)
	require.NoError(t, err)

	payload, sig = f.gateway.Fail("evt_fail_late", d.PaymentIntentID)
	_, err = f.svc.Process(ctx, payload, sig)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationCompleted, f.donation(t, d.PaymentIntentID).Status)
}

func TestProcess_InvalidSignatureMutatesNothing(t *testing.T) {
	f := newFixture(t)
	d := f.pendingDonation(t, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund})

	payload, _ := f.gateway.Complete("evt_bad", d.PaymentIntentID, "ch_1")
	_, err := f.svc.Process(context.Background(), payload, "forged")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	assert.Equal(t, domain.DonationPending, f.donation(t, d.PaymentIntentID).Status)
	assert.Zero(t, countRows(t, f.db, "webhook_events"))
}

func TestProcess_UnknownTypeIsIgnoredAndNotRecorded(t *testing.T) {
	f := newFixture(t)
	evt, err := f.svc.Process(context.Background(), []byte(`{"id":"evt_x","type":"charge.refunded"}`), mockpayment.Signature)
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookIgnored, evt.Kind)
	assert.Zero(t, countRows(t, f.db, "webhook_events"))
}

func TestProcess_UndecodableEventIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	d := f.pendingDonation(t, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund})

	evt, err := f.svc.Process(context.Background(), []byte(`{"id":"evt_poison","type":"payment_intent.succeeded"}`), mockpayment.Signature)
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookIgnored, evt.Kind)
	assert.Zero(t, countRows(t, f.db, "webhook_events"))
	assert.Equal(t, domain.DonationPending, f.donation(t, d.PaymentIntentID).Status)
}

func TestProcess_CustomerCreatedIsRecorded(t *testing.T) {
	f := newFixture(t)
	evt, err := f.svc.Process(context.Background(), []byte(`{"id":"evt_c","type":"customer.created"}`), mockpayment.Signature)
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookAcknowledged, evt.Kind)
	assert.Equal(t, int64(1), countRows(t, f.db, "webhook_events"))
}

func TestProcess_UnknownIntentIsRecordedNoop(t *testing.T) {
	f := newFixture(t)
	payload, sig := f.gateway.Complete("evt_orphan", "pi_unknown", "ch_1")
	_, err := f.svc.Process(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countRows(t, f.db, "webhook_events"))
}

func TestProcess_InternalFailureRollsBackForRedelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// campaign id that does not exist makes the increment fail inside the transaction
	missing := uuid.New()
	d := f.pendingDonation(t, domain.DonationRequest{
		Amount:          decimal.NewFromInt(10),
		Type:            domain.DonationTypeGroupCampaign,
		GroupCampaignID: &missing,
	})

	payload, sig := f.gateway.Complete("evt_rb", d.PaymentIntentID, "ch_1")
	_, err := f.svc.Process(ctx, payload, sig)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, domain.DonationPending, f.donation(t, d.PaymentIntentID).Status)
	assert.Zero(t, countRows(t, f.db, "webhook_events"), "ledger row must roll back")
}

func TestProcess_PublishFailureDoesNotFailDelivery(t *testing.T) {
	f := newFixture(t)
	d := f.pendingDonation(t, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(errors.New("bus down")).Once()

	payload, sig := f.gateway.Complete("evt_pub", d.PaymentIntentID, "ch_1")
	_, err := f.svc.Process(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationCompleted, f.donation(t, d.PaymentIntentID).Status)
}

func TestProcess_SetsProcessedAt(t *testing.T) {
	f := newFixture(t)
	before := time.Now().Add(-time.Second)
	d := f.pendingDonation(t, domain.DonationRequest{Amount: decimal.NewFromInt(10), Type: domain.DonationTypeGeneralFund})
	f.bus.On("Emit", mock.Anything, mock.Anything).Return(nil).Once()

	payload, sig := f.gateway.Complete("evt_ts", d.PaymentIntentID, "ch_1")
	_, err := f.svc.Process(context.Background(), payload, sig)
	require.NoError(t, err)

	got := f.donation(t, d.PaymentIntentID)
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, got.ProcessedAt.After(before))
}
