// Package common holds the response envelopes, error translation and request
// binding shared by every route package.
package common

import (
	"errors"
	"reflect"
	"strings"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
	Error    string `json:"error"`              // Extension member: same text as Title
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ProblemDetailsJSON writes an application/problem+json response.
//
// Optional args: a string overrides the detail, an int overrides the status.
// Without an explicit status it is derived from err with ErrorToStatusCode,
// or 400 when err is nil. Server-side failures never echo err to the client.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := fiber.StatusBadRequest
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	detail := ""
	for _, a := range args {
		switch v := a.(type) {
		case string:
			detail = v
		case int:
			status = v
		}
	}
	if detail == "" && err != nil && status < fiber.StatusInternalServerError {
		detail = err.Error()
	}

	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.OriginalURL(),
		Error:    title,
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		pd.Errors = validationMessages(verrs)
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, domain.ErrPaymentGateway), errors.Is(err, domain.ErrStorage):
		return fiber.StatusBadGateway
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrStudentNotEligible),
		errors.Is(err, domain.ErrCampaignNotEligible),
		errors.Is(err, domain.ErrDonorProfileRequired),
		errors.Is(err, domain.ErrStudentProfileRequired),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDonationType),
		errors.Is(err, domain.ErrStudentRequired),
		errors.Is(err, domain.ErrCampaignRequired),
		errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, domain.ErrInvalidDocumentType),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorTitle is the user-facing title for err. 5xx titles are generic.
func ErrorTitle(err error) string {
	switch {
	case errors.Is(err, domain.ErrDonorProfileRequired):
		return "Donor profile required"
	case errors.Is(err, domain.ErrStudentProfileRequired):
		return "Student profile required"
	case errors.Is(err, domain.ErrStudentNotEligible):
		return "Student not found or not verified"
	case errors.Is(err, domain.ErrCampaignNotEligible):
		return "Campaign not found or inactive"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "Invalid signature"
	case errors.Is(err, domain.ErrPaymentGateway):
		return "Payment provider error"
	case errors.Is(err, domain.ErrStorage):
		return "Document storage error"
	}
	switch ErrorToStatusCode(err) {
	case fiber.StatusBadRequest:
		return "Invalid request"
	case fiber.StatusUnauthorized:
		return "Unauthorized"
	case fiber.StatusForbidden:
		return "Forbidden"
	case fiber.StatusNotFound:
		return "Not found"
	case fiber.StatusConflict:
		return "Already exists"
	default:
		return "Internal Server Error"
	}
}

// ErrorJSON writes err with its mapped title and status.
func ErrorJSON(c *fiber.Ctx, err error) error {
	return ProblemDetailsJSON(c, ErrorTitle(err), err)
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error())
	}
	if err := validate.Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}

func validationMessages(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[fe.Field()] = msg
	}
	return out
}
