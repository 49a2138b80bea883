package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentLoanStatement      DocumentType = "LOAN_STATEMENT"
	DocumentIncomeVerification DocumentType = "INCOME_VERIFICATION"
	DocumentEnrollmentProof    DocumentType = "ENROLLMENT_PROOF"
	DocumentTaxDocument        DocumentType = "TAX_DOCUMENT"
	DocumentOther              DocumentType = "OTHER"
)

// ParseDocumentType validates a document type string.
func ParseDocumentType(s string) (DocumentType, error) {
	switch t := DocumentType(s); t {
	case DocumentLoanStatement, DocumentIncomeVerification, DocumentEnrollmentProof,
		DocumentTaxDocument, DocumentOther:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, s)
}

// Label renders the type for notification copy, e.g. "loan statement".
func (t DocumentType) Label() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", " ")
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// Document is a supporting file a student uploaded for verification.
type Document struct {
	ID         uuid.UUID      `json:"id"`
	StudentID  uuid.UUID      `json:"studentId"`
	Type       DocumentType   `json:"type"`
	FileName   string         `json:"fileName"`
	FileURL    string         `json:"fileUrl"`
	FileSize   int64          `json:"fileSize"`
	MimeType   string         `json:"mimeType"`
	Status     DocumentStatus `json:"status"`
	UploadedAt time.Time      `json:"uploadedAt"`
}
