package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when the caller has no valid session
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller's role does not allow the action
	ErrForbidden = errors.New("forbidden")
)

// Donation lifecycle errors
var (
	ErrInvalidAmount          = errors.New("amount out of range")
	ErrInvalidDonationType    = errors.New("invalid donation type")
	ErrStudentRequired        = errors.New("studentId is required for individual donations")
	ErrCampaignRequired       = errors.New("groupCampaignId is required for campaign donations")
	ErrDonorProfileRequired   = errors.New("donor profile required")
	ErrStudentProfileRequired = errors.New("student profile required")
	ErrStudentNotEligible     = errors.New("student not found or not verified")
	ErrCampaignNotEligible    = errors.New("campaign not found or inactive")
	ErrInvalidDecision        = errors.New("invalid verification decision")
	ErrInvalidDocumentType    = errors.New("invalid document type")
	ErrInvalidRole            = errors.New("invalid role")
)

// Integration errors
var (
	// ErrPaymentGateway wraps any failure reported by the payment gateway
	ErrPaymentGateway = errors.New("payment gateway error")
	// ErrInvalidSignature is returned when a webhook payload fails verification
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedWebhookEvent is returned when a verified event carries an
	// object that cannot be decoded. Redelivery cannot fix it.
	ErrMalformedWebhookEvent = errors.New("malformed webhook event")
	// ErrStorage wraps document storage failures
	ErrStorage = errors.New("document storage error")
)
