// Package profile manages user roles and the donor and student profiles
// hanging off a user.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateToken(id domain.Identity) (string, error)
}

type Service struct {
	uow    repository.UnitOfWork
	tokens TokenIssuer
	logger *slog.Logger
}

func New(uow repository.UnitOfWork, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{uow: uow, tokens: tokens, logger: logger}
}

// DonorProfileInput is the donor onboarding form.
type DonorProfileInput struct {
	FirstName   string
	LastName    string
	Company     *string
	Phone       *string
	IsAnonymous bool
}

// StudentProfileInput is the student onboarding form. InterestRatePercent is
// entered as a percent, e.g. 5.5.
type StudentProfileInput struct {
	FirstName           string
	LastName            string
	DateOfBirth         time.Time
	Phone               *string
	Address             string
	City                string
	State               string
	ZipCode             string
	SchoolName          string
	Major               string
	GraduationDate      *time.Time
	GPA                 *decimal.Decimal
	TotalDebtAmount     decimal.Decimal
	MonthlyPayment      *decimal.Decimal
	InterestRatePercent *decimal.Decimal
	LoanServicer        *string
	EmploymentStatus    *string
	AnnualIncome        *decimal.Decimal
	DisplayName         string
	Bio                 string
}

// SetRole stores role for the caller and returns the user with a fresh
// session token carrying it. Only an admin may grant ADMIN.
func (s *Service) SetRole(ctx context.Context, id domain.Identity, role domain.Role) (*domain.User, string, error) {
	log := s.logger.With("handler", "SetRole", "userID", id.UserID, "role", role)

	if role == domain.RoleAdmin && id.Role != domain.RoleAdmin {
		log.Warn("⛔ Admin role self-assignment rejected")
		return nil, "", domain.ErrForbidden
	}

	var user *domain.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		u, err := ensureUser(ctx, uow, id)
		if err != nil {
			return err
		}
		u.Role = role
		if err := uow.UserRepository().Upsert(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		log.Error("failed to set role", "error", err)
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(domain.Identity{UserID: user.ID, Email: user.Email, Role: role})
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	log.Info("✅ Role updated")
	return user, token, nil
}

// CreateDonorProfile creates the caller's payer record. A user has at most one.
func (s *Service) CreateDonorProfile(
	ctx context.Context,
	id domain.Identity,
	in DonorProfileInput,
) (*domain.DonorProfile, error) {
	log := s.logger.With("handler", "CreateDonorProfile", "userID", id.UserID)
	profile := &domain.DonorProfile{
		ID:          uuid.New(),
		UserID:      id.UserID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Company:     in.Company,
		Phone:       in.Phone,
		IsAnonymous: in.IsAnonymous,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := ensureUser(ctx, uow, id); err != nil {
			return err
		}
		if _, err := uow.DonorRepository().GetByUserID(ctx, id.UserID); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return uow.DonorRepository().Create(ctx, profile)
	})
	if err != nil {
		log.Error("failed to create donor profile", "error", err)
		return nil, err
	}
	log.Info("👤 Donor profile created", "profileID", profile.ID)
	return profile, nil
}

// CreateStudentProfile creates the caller's student profile in PENDING
// verification, private and open to direct donations.
func (s *Service) CreateStudentProfile(
	ctx context.Context,
	id domain.Identity,
	in StudentProfileInput,
) (*domain.StudentProfile, error) {
	log := s.logger.With("handler", "CreateStudentProfile", "userID", id.UserID)
	profile := &domain.StudentProfile{
		ID:                   uuid.New(),
		UserID:               id.UserID,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		DateOfBirth:          in.DateOfBirth,
		Phone:                in.Phone,
		Address:              in.Address,
		City:                 in.City,
		State:                in.State,
		ZipCode:              in.ZipCode,
		SchoolName:           in.SchoolName,
		Major:                in.Major,
		GraduationDate:       in.GraduationDate,
		GPA:                  in.GPA,
		TotalDebtAmount:      in.TotalDebtAmount,
		MonthlyPayment:       in.MonthlyPayment,
		LoanServicer:         in.LoanServicer,
		EmploymentStatus:     in.EmploymentStatus,
		AnnualIncome:         in.AnnualIncome,
		DisplayName:          in.DisplayName,
		Bio:                  in.Bio,
		IsPublic:             false,
		AllowDirectDonations: true,
		Status:               domain.VerificationPending,
		CreatedAt:            time.Now().UTC(),
	}
	if in.InterestRatePercent != nil {
		rate := domain.PercentToRate(*in.InterestRatePercent)
		profile.InterestRate = &rate
	}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := ensureUser(ctx, uow, id); err != nil {
			return err
		}
		if _, err := uow.StudentRepository().GetByUserID(ctx, id.UserID); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return uow.StudentRepository().Create(ctx, profile)
	})
	if err != nil {
		log.Error("failed to create student profile", "error", err)
		return nil, err
	}
	log.Info("🎓 Student profile created", "profileID", profile.ID)
	return profile, nil
}

// ensureUser returns the local user row for id, creating it from the session
// claims on first sight.
func ensureUser(ctx context.Context, uow repository.UnitOfWork, id domain.Identity) (*domain.User, error) {
	u, err := uow.UserRepository().Get(ctx, id.UserID)
	if err == nil {
		if id.Email != "" {
			u.Email = id.Email
		}
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if id.Email == "" {
		return nil, fmt.Errorf("%w: session has no email", domain.ErrValidation)
	}
	u = &domain.User{ID: id.UserID, Email: id.Email, Role: id.Role}
	if err := uow.UserRepository().Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
