package repository

import (
	"context"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new gorm-backed student profile repository.
func NewStudentRepository(db *gorm.DB) repository.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, p *domain.StudentProfile) error {
	return wrapOp("create student profile", func() error {
		return r.db.WithContext(ctx).Create(mapStudentToModel(p)).Error
	})
}

func (r *studentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.StudentProfile, error) {
	var m StudentProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapStudentToDomain(&m), nil
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.StudentProfile, error) {
	var m StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapStudentToDomain(&m), nil
}

// UpdateVerification persists only the verification columns of p.
func (r *studentRepository) UpdateVerification(ctx context.Context, p *domain.StudentProfile) error {
	res := r.db.WithContext(ctx).
		Model(&StudentProfile{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"verification_status": string(p.Status),
			"verified_at":         p.VerifiedAt,
			"verified_by":         p.VerifiedBy,
			"verification_notes":  p.VerificationNotes,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *studentRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]*domain.StudentProfile, error) {
	var ms []StudentProfile
	if err := r.db.WithContext(ctx).
		Where("verification_status = ?", string(status)).
		Order("created_at").
		Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*domain.StudentProfile, 0, len(ms))
	for i := range ms {
		out = append(out, mapStudentToDomain(&ms[i]))
	}
	return out, nil
}

func mapStudentToModel(p *domain.StudentProfile) *StudentProfile {
	return &StudentProfile{
		ID:                   p.ID,
		UserID:               p.UserID,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		DateOfBirth:          p.DateOfBirth,
		Phone:                p.Phone,
		Address:              p.Address,
		City:                 p.City,
		State:                p.State,
		ZipCode:              p.ZipCode,
		SchoolName:           p.SchoolName,
		Major:                p.Major,
		GraduationDate:       p.GraduationDate,
		GPA:                  p.GPA,
		TotalDebtAmount:      p.TotalDebtAmount,
		MonthlyPayment:       p.MonthlyPayment,
		InterestRate:         p.InterestRate,
		LoanServicer:         p.LoanServicer,
		EmploymentStatus:     p.EmploymentStatus,
		AnnualIncome:         p.AnnualIncome,
		DisplayName:          p.DisplayName,
		Bio:                  p.Bio,
		IsPublic:             p.IsPublic,
		AllowDirectDonations: p.AllowDirectDonations,
		VerificationStatus:   string(p.Status),
		VerifiedAt:           p.VerifiedAt,
		VerifiedBy:           p.VerifiedBy,
		VerificationNotes:    p.VerificationNotes,
		CreatedAt:            p.CreatedAt,
	}
}

func mapStudentToDomain(m *StudentProfile) *domain.StudentProfile {
	return &domain.StudentProfile{
		ID:                   m.ID,
		UserID:               m.UserID,
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		DateOfBirth:          m.DateOfBirth,
		Phone:                m.Phone,
		Address:              m.Address,
		City:                 m.City,
		State:                m.State,
		ZipCode:              m.ZipCode,
		SchoolName:           m.SchoolName,
		Major:                m.Major,
		GraduationDate:       m.GraduationDate,
		GPA:                  m.GPA,
		TotalDebtAmount:      m.TotalDebtAmount,
		MonthlyPayment:       m.MonthlyPayment,
		InterestRate:         m.InterestRate,
		LoanServicer:         m.LoanServicer,
		EmploymentStatus:     m.EmploymentStatus,
		AnnualIncome:         m.AnnualIncome,
		DisplayName:          m.DisplayName,
		Bio:                  m.Bio,
		IsPublic:             m.IsPublic,
		AllowDirectDonations: m.AllowDirectDonations,
		Status:               domain.VerificationStatus(m.VerificationStatus),
		VerifiedAt:           m.VerifiedAt,
		VerifiedBy:           m.VerifiedBy,
		VerificationNotes:    m.VerificationNotes,
		CreatedAt:            m.CreatedAt,
	}
}
