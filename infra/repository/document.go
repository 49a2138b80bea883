package repository

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new gorm-backed document repository.
func NewDocumentRepository(db *gorm.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return wrapOp("create document", func() error {
		return r.db.WithContext(ctx).Create(&Document{
			ID:         doc.ID,
			StudentID:  doc.StudentID,
			Type:       string(doc.Type),
			FileName:   doc.FileName,
			FileURL:    doc.FileURL,
			FileSize:   doc.FileSize,
			MimeType:   doc.MimeType,
			Status:     string(doc.Status),
			UploadedAt: doc.UploadedAt,
		}).Error
	})
}

func (r *documentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Document, error) {
	var ms []Document
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("uploaded_at DESC").
		Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*domain.Document, 0, len(ms))
	for _, m := range ms {
		out = append(out, &domain.Document{
			ID:         m.ID,
			StudentID:  m.StudentID,
			Type:       domain.DocumentType(m.Type),
			FileName:   m.FileName,
			FileURL:    m.FileURL,
			FileSize:   m.FileSize,
			MimeType:   m.MimeType,
			Status:     domain.DocumentStatus(m.Status),
			UploadedAt: m.UploadedAt,
		})
	}
	return out, nil
}
