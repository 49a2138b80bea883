package webapi_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/studentrelief/infra/provider/mockpayment"
	"github.com/amirasaad/studentrelief/internal/fixtures/testdb"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/amirasaad/studentrelief/webapi/payment"
	"github.com/amirasaad/studentrelief/webapi/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendWebhook(t *testing.T, ta *testutils.TestApp, payload []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhooks", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(payment.SignatureHeader, signature)
	}
	return ta.Do(t, req)
}

func onlyDonation(t *testing.T, ta *testutils.TestApp, donor *domain.DonorProfile) *domain.Donation {
	t.Helper()
	list, err := ta.Uow.DonationRepository().ListByDonor(context.Background(), donor.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0]
}

func TestHealth(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	resp := ta.Request(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Student Relief API is running")
}

func TestProtectedRoutes_Guards(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	student := testdb.SeedUser(t, ta.Uow, domain.RoleStudent)
	donor := testdb.SeedUser(t, ta.Uow, domain.RoleDonor)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"donations without token", http.MethodPost, "/donations", "", http.StatusUnauthorized},
		{"donations with garbage token", http.MethodGet, "/donations", "not-a-jwt", http.StatusUnauthorized},
		{"donations as student", http.MethodGet, "/donations", ta.Token(t, student), http.StatusForbidden},
		{"admin as donor", http.MethodGet, "/admin/students", ta.Token(t, donor), http.StatusForbidden},
		{"documents as donor", http.MethodGet, "/documents", ta.Token(t, donor), http.StatusForbidden},
		{"notifications without token", http.MethodGet, "/notifications", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := ta.Request(t, tc.method, tc.path, "", tc.token)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestCreateDonation_GeneralFund(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u, donor := testdb.SeedDonor(t, ta.Uow)

	resp := ta.Request(t, http.MethodPost, "/donations", `{"amount":25.50,"type":"GENERAL_FUND"}`, ta.Token(t, u))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutils.Decode[map[string]any](t, resp)
	assert.NotEmpty(t, body["clientSecret"])
	assert.NotEmpty(t, body["donationId"])

	d := onlyDonation(t, ta, donor)
	assert.Equal(t, domain.DonationPending, d.Status)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, 1, ta.Gateway.Customers())
}

func TestCreateDonation_Rejections(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u, _ := testdb.SeedDonor(t, ta.Uow)
	token := ta.Token(t, u)
	_, pending := testdb.SeedStudent(t, ta.Uow, domain.VerificationPending)
	noProfile := ta.Token(t, testdb.SeedUser(t, ta.Uow, domain.RoleDonor))

	tests := []struct {
		name      string
		body      string
		token     string
		wantTitle string
	}{
		{"below minimum", `{"amount":0.5,"type":"GENERAL_FUND"}`, token, "Invalid request"},
		{"above maximum", `{"amount":10000.01,"type":"GENERAL_FUND"}`, token, "Invalid request"},
		{"missing type", `{"amount":10}`, token, "Validation failed"},
		{"student missing", `{"amount":10,"type":"INDIVIDUAL_STUDENT"}`, token, "Invalid request"},
		{"student not verified", fmt.Sprintf(`{"amount":10,"type":"INDIVIDUAL_STUDENT","studentId":%q}`, pending.ID), token, "Student not found or not verified"},
		{"unknown campaign", fmt.Sprintf(`{"amount":10,"type":"GROUP_CAMPAIGN","groupCampaignId":%q}`, uuid.New()), token, "Campaign not found or inactive"},
		{"no donor profile", `{"amount":10,"type":"GENERAL_FUND"}`, noProfile, "Donor profile required"},
		{"malformed body", `{"amount":`, token, "Invalid request body"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := ta.Request(t, http.MethodPost, "/donations", tc.body, tc.token)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			pd := testutils.Decode[common.ProblemDetails](t, resp)
			assert.Equal(t, tc.wantTitle, pd.Title)
		})
	}
	assert.Equal(t, 0, ta.Gateway.Customers(), "no customer is created for a rejected request")
}

func TestCreateDonation_GatewayFailure(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u, _ := testdb.SeedDonor(t, ta.Uow)
	ta.Gateway.PaymentIntentErr = assert.AnError

	resp := ta.Request(t, http.MethodPost, "/donations", `{"amount":10,"type":"GENERAL_FUND"}`, ta.Token(t, u))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestSetupPaymentMethod_ReusesCustomer(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u, _ := testdb.SeedDonor(t, ta.Uow)
	token := ta.Token(t, u)

	first := testutils.Decode[map[string]any](t, ta.Request(t, http.MethodPost, "/donor/setup-payment-method", "", token))
	second := testutils.Decode[map[string]any](t, ta.Request(t, http.MethodPost, "/donor/setup-payment-method", "", token))

	assert.NotEmpty(t, first["clientSecret"])
	assert.Equal(t, first["customerId"], second["customerId"])
	assert.Equal(t, 1, ta.Gateway.Customers())
}

func TestStripeWebhook_CompletesCampaignDonationOnce(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u, donor := testdb.SeedDonor(t, ta.Uow)
	campaign := testdb.SeedCampaign(t, ta.Uow, true, nil)

	body := fmt.Sprintf(`{"amount":25.50,"type":"GROUP_CAMPAIGN","groupCampaignId":%q}`, campaign.ID)
	require.Equal(t, http.StatusOK, ta.Request(t, http.MethodPost, "/donations", body, ta.Token(t, u)).StatusCode)
	d := onlyDonation(t, ta, donor)

	payload, sig := ta.Gateway.Complete("evt_1", d.PaymentIntentID, "ch_1")
	for range 2 {
		resp := sendWebhook(t, ta, payload, sig)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, testutils.Decode[map[string]any](t, resp)["received"])
	}

	d = onlyDonation(t, ta, donor)
	assert.Equal(t, domain.DonationCompleted, d.Status)
	require.NotNil(t, d.ChargeID)
	assert.Equal(t, "ch_1", *d.ChargeID)

	got, err := ta.Uow.CampaignRepository().Get(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.RequireFromString("25.50")), "got %s", got.CurrentAmount)
}

func TestStripeWebhook_FailedPayment(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u, donor := testdb.SeedDonor(t, ta.Uow)
	require.Equal(t, http.StatusOK, ta.Request(t, http.MethodPost, "/donations", `{"amount":10,"type":"GENERAL_FUND"}`, ta.Token(t, u)).StatusCode)
	d := onlyDonation(t, ta, donor)

	payload, sig := ta.Gateway.Fail("evt_f", d.PaymentIntentID)
	require.Equal(t, http.StatusOK, sendWebhook(t, ta, payload, sig).StatusCode)

	assert.Equal(t, domain.DonationFailed, onlyDonation(t, ta, donor).Status)
}

func TestStripeWebhook_SignatureRejected(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	payload, _ := ta.Gateway.Complete("evt_x", "pi_unknown", "ch_x")

	for name, sig := range map[string]string{"missing": "", "forged": "t=1,v1=forged"} {
		t.Run(name, func(t *testing.T) {
			resp := sendWebhook(t, ta, payload, sig)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Invalid signature", testutils.Decode[common.ProblemDetails](t, resp).Title)
		})
	}
}

func TestStripeWebhook_UndecodableEventIsAcknowledged(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	resp := sendWebhook(t, ta, []byte(`{"id":"evt_poison","type":"payment_intent.payment_failed"}`), mockpayment.Signature)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]bool{"received": true}, testutils.Decode[map[string]bool](t, resp))

	var n int64
	require.NoError(t, ta.DB.Table("webhook_events").Count(&n).Error)
	assert.Zero(t, n)
}

func TestStripeWebhook_InternalFailureIsRetryable(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u, donor := testdb.SeedDonor(t, ta.Uow)
	campaign := testdb.SeedCampaign(t, ta.Uow, true, nil)
	body := fmt.Sprintf(`{"amount":10,"type":"GROUP_CAMPAIGN","groupCampaignId":%q}`, campaign.ID)
	require.Equal(t, http.StatusOK, ta.Request(t, http.MethodPost, "/donations", body, ta.Token(t, u)).StatusCode)
	d := onlyDonation(t, ta, donor)
	require.NoError(t, ta.DB.Exec("DELETE FROM group_campaigns").Error)

	payload, sig := ta.Gateway.Complete("evt_boom", d.PaymentIntentID, "ch_1")
	resp := sendWebhook(t, ta, payload, sig)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	pd := testutils.Decode[common.ProblemDetails](t, resp)
	assert.Equal(t, "Webhook handler failed", pd.Title)
	assert.Equal(t, "Webhook handler failed", pd.Error)
	assert.Empty(t, pd.Detail)

	assert.Equal(t, domain.DonationPending, onlyDonation(t, ta, donor).Status)
}

func TestAdminVerifyStudent(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	admin := testdb.SeedUser(t, ta.Uow, domain.RoleAdmin)
	studentUser, student := testdb.SeedStudent(t, ta.Uow, domain.VerificationPending)
	token := ta.Token(t, admin)

	t.Run("approve", func(t *testing.T) {
		body := fmt.Sprintf(`{"studentId":%q,"action":"APPROVE"}`, student.ID)
		resp := ta.Request(t, http.MethodPost, "/admin/verify-student", body, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		out := testutils.Decode[map[string]any](t, resp)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, "VERIFIED", out["student"].(map[string]any)["verificationStatus"])

		list, err := ta.Uow.NotificationRepository().ListByUser(context.Background(), studentUser.ID, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Verification Approved", list[0].Title)
	})

	t.Run("unknown student", func(t *testing.T) {
		body := fmt.Sprintf(`{"studentId":%q,"action":"REJECT"}`, uuid.New())
		resp := ta.Request(t, http.MethodPost, "/admin/verify-student", body, token)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Student not found", testutils.Decode[common.ProblemDetails](t, resp).Title)
	})

	t.Run("invalid action", func(t *testing.T) {
		body := fmt.Sprintf(`{"studentId":%q,"action":"MAYBE"}`, student.ID)
		resp := ta.Request(t, http.MethodPost, "/admin/verify-student", body, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("action is the decision field", func(t *testing.T) {
		body := fmt.Sprintf(`{"studentId":%q,"decision":"APPROVE"}`, student.ID)
		resp := ta.Request(t, http.MethodPost, "/admin/verify-student", body, token)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		pd := testutils.Decode[common.ProblemDetails](t, resp)
		assert.Equal(t, map[string]any{"action": "failed required"}, pd.Errors)
		assert.Equal(t, "Validation failed", pd.Error)
	})

	t.Run("list by status", func(t *testing.T) {
		resp := ta.Request(t, http.MethodGet, "/admin/students?status=VERIFIED", "", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		out := testutils.Decode[common.Response](t, resp)
		assert.Len(t, out.Data, 1)

		resp = ta.Request(t, http.MethodGet, "/admin/students", "", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, testutils.Decode[common.Response](t, resp).Data)
	})
}

func TestDocumentUpload_NotifiesAdmins(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	admin := testdb.SeedUser(t, ta.Uow, domain.RoleAdmin)
	studentUser, _ := testdb.SeedStudent(t, ta.Uow, domain.VerificationPending)

	body := `{"type":"LOAN_STATEMENT","fileName":"statement.pdf","fileUrl":"https://files.example.com/statement.pdf","fileSize":2048,"mimeType":"application/pdf"}`
	resp := ta.Request(t, http.MethodPost, "/documents", body, ta.Token(t, studentUser))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ta.Request(t, http.MethodGet, "/notifications", "", ta.Token(t, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := testutils.Decode[common.Response](t, resp)
	list, ok := out.Data.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "New Document Uploaded", list[0].(map[string]any)["title"])
}

func TestDocumentUpload_RequiresStudentProfile(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	student := testdb.SeedUser(t, ta.Uow, domain.RoleStudent)

	body := `{"type":"OTHER","fileName":"a.pdf","fileUrl":"https://files.example.com/a.pdf","fileSize":1,"mimeType":"application/pdf"}`
	resp := ta.Request(t, http.MethodPost, "/documents", body, ta.Token(t, student))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Student profile required", testutils.Decode[common.ProblemDetails](t, resp).Title)
}

func TestDocumentFileUpload(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	studentUser, _ := testdb.SeedStudent(t, ta.Uow, domain.VerificationPending)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("type", "ENROLLMENT_PROOF"))
	fw, err := w.CreateFormFile("file", "enrollment.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 enrollment"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/file", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ta.Token(t, studentUser))
	resp := ta.Do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, ta.Store.Len())

	resp = ta.Request(t, http.MethodGet, "/documents", "", ta.Token(t, studentUser))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, testutils.Decode[common.Response](t, resp).Data, 1)
}

func TestCampaignRoutes(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	active := testdb.SeedCampaign(t, ta.Uow, true, nil)
	testdb.SeedCampaign(t, ta.Uow, false, nil)
	past := time.Now().Add(-time.Hour)
	testdb.SeedCampaign(t, ta.Uow, true, &past)

	resp := ta.Request(t, http.MethodGet, "/campaigns", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list, ok := testutils.Decode[common.Response](t, resp).Data.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID.String(), list[0].(map[string]any)["id"])

	assert.Equal(t, http.StatusOK, ta.Request(t, http.MethodGet, "/campaigns/"+active.ID.String(), "", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, ta.Request(t, http.MethodGet, "/campaigns/"+uuid.NewString(), "", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, ta.Request(t, http.MethodGet, "/campaigns/not-a-uuid", "", "").StatusCode)
}

func TestUserRoutes(t *testing.T) {
	ta := testutils.NewTestApp(t, nil)
	u := testdb.SeedUser(t, ta.Uow, domain.RoleDonor)
	token := ta.Token(t, u)

	t.Run("admin self-assignment is forbidden", func(t *testing.T) {
		resp := ta.Request(t, http.MethodPost, "/user/role", `{"role":"ADMIN"}`, token)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("role change returns a fresh token", func(t *testing.T) {
		resp := ta.Request(t, http.MethodPost, "/user/role", `{"role":"DONOR"}`, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := testutils.Decode[common.Response](t, resp).Data.(map[string]any)
		assert.Equal(t, "DONOR", data["role"])
		assert.NotEmpty(t, data["token"])
	})

	t.Run("donor profile once", func(t *testing.T) {
		body := `{"firstName":"Dana","lastName":"Donor"}`
		assert.Equal(t, http.StatusCreated, ta.Request(t, http.MethodPost, "/user/donor-profile", body, token).StatusCode)
		resp := ta.Request(t, http.MethodPost, "/user/donor-profile", body, token)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Profile already exists", testutils.Decode[common.ProblemDetails](t, resp).Title)
	})

	t.Run("student profile needs positive debt", func(t *testing.T) {
		body := `{"firstName":"Sam","lastName":"Lee","dateOfBirth":"1999-01-02T00:00:00Z","address":"1 Main St",` +
			`"city":"Austin","state":"TX","zipCode":"73301","schoolName":"UT","major":"History",` +
			`"totalDebtAmount":0,"displayName":"Sam","bio":"History grad"}`
		resp := ta.Request(t, http.MethodPost, "/user/student-profile", body, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testutils.TestConfig()
	cfg.RateLimit.MaxRequests = 2
	ta := testutils.NewTestApp(t, cfg)

	for range 2 {
		assert.Equal(t, http.StatusOK, ta.Request(t, http.MethodGet, "/", "", "").StatusCode)
	}
	resp := ta.Request(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too Many Requests", testutils.Decode[common.ProblemDetails](t, resp).Title)

	// webhook deliveries bypass the limiter
	payload, _ := ta.Gateway.Complete("evt_rl", "pi_none", "")
	assert.Equal(t, http.StatusOK, sendWebhook(t, ta, payload, mockpayment.Signature).StatusCode)
}
