package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationDonationReceived   NotificationType = "DONATION_RECEIVED"
	NotificationVerificationStatus NotificationType = "VERIFICATION_STATUS"
	NotificationDocumentUpload     NotificationType = "DOCUMENT_UPLOAD"
)

// Notification is a write-once message to a user.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

func newNotification(userID uuid.UUID, typ NotificationType, title, message string, meta map[string]any) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
}

// DonationReceivedNotification tells a student a direct donation completed.
func DonationReceivedNotification(studentUserID uuid.UUID, d *Donation) *Notification {
	return newNotification(
		studentUserID,
		NotificationDonationReceived,
		"Donation Received",
		"You received a "+FormatUSD(d.Amount)+" donation!",
		map[string]any{
			"donationId": d.ID.String(),
			"amount":     d.Amount.String(),
		},
	)
}

// VerificationNotification tells a student the outcome of an admin review.
func VerificationNotification(s *StudentProfile) *Notification {
	title := "Verification Approved"
	message := "Your student profile has been verified! You can now receive donations."
	if s.Status != VerificationVerified {
		title = "Verification Rejected"
		notes := "Please contact support for details."
		if s.VerificationNotes != nil && *s.VerificationNotes != "" {
			notes = *s.VerificationNotes
		}
		message = "Your verification was not approved. " + notes
	}
	meta := map[string]any{"status": string(s.Status)}
	if s.VerificationNotes != nil {
		meta["notes"] = *s.VerificationNotes
	}
	return newNotification(s.UserID, NotificationVerificationStatus, title, message, meta)
}

// DocumentUploadNotification tells one admin that a student uploaded a document.
func DocumentUploadNotification(adminID uuid.UUID, s *StudentProfile, doc *Document) *Notification {
	return newNotification(
		adminID,
		NotificationDocumentUpload,
		"New Document Uploaded",
		s.FullName()+" uploaded a "+doc.Type.Label()+" document",
		map[string]any{
			"documentId":   doc.ID.String(),
			"studentId":    s.ID.String(),
			"documentType": string(doc.Type),
		},
	)
}
