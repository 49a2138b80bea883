package payment

// PaymentStatus is the gateway-side state of a payment intent.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCanceled  PaymentStatus = "canceled"
)

// Terminal reports whether the gateway will not change the status any more.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentCanceled
}

// WebhookEventKind is the normalized meaning of a gateway event.
type WebhookEventKind string

const (
	// WebhookPaymentSucceeded completes the donation bound to the intent.
	WebhookPaymentSucceeded WebhookEventKind = "payment_succeeded"
	// WebhookPaymentFailed fails the donation bound to the intent.
	WebhookPaymentFailed WebhookEventKind = "payment_failed"
	// WebhookAcknowledged is recorded without side effects.
	WebhookAcknowledged WebhookEventKind = "acknowledged"
	// WebhookIgnored is answered 200 and not recorded.
	WebhookIgnored WebhookEventKind = "ignored"
)

// Metadata keys attached to every donation payment intent.
const (
	MetadataDonorID         = "donorId"
	MetadataStudentID       = "studentId"
	MetadataGroupCampaignID = "groupCampaignId"
	MetadataType            = "type"
	MetadataUserID          = "userId"
)

// WebhookEvent is a verified gateway event.
type WebhookEvent struct {
	ID              string
	Type            string
	Kind            WebhookEventKind
	PaymentIntentID string
	ChargeID        string
	Metadata        map[string]string
}

type CreateCustomerParams struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// CreatePaymentIntentParams describes a charge in minor units.
type CreatePaymentIntentParams struct {
	AmountCents int64
	Currency    string
	CustomerID  string
	Metadata    map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       PaymentStatus
	AmountCents  int64
	Metadata     map[string]string
}

type SetupIntent struct {
	ID           string
	ClientSecret string
	CustomerID   string
}
