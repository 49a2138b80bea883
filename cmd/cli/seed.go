package main

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	seedAdminEmail   = "admin@example.com"
	seedStudentEmail = "student@example.com"
	seedDonorEmail   = "donor@example.com"
)

func ptr[T any](v T) *T { return &v }

// seed inserts the demo data set once. A second run is a no-op.
func (c *cli) seed(ctx context.Context) error {
	_, err := c.uow.UserRepository().GetByEmail(ctx, seedAdminEmail)
	switch {
	case err == nil:
		infoColor.Fprintln(c.out, "seed data already present") //nolint:errcheck
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	now := time.Now().UTC()
	err = c.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		admin := &domain.User{ID: uuid.New(), Email: seedAdminEmail, Name: "Admin", Role: domain.RoleAdmin}
		studentUser := &domain.User{ID: uuid.New(), Email: seedStudentEmail, Name: "Sarah Johnson", Role: domain.RoleStudent}
		donorUser := &domain.User{ID: uuid.New(), Email: seedDonorEmail, Name: "John Smith", Role: domain.RoleDonor}
		for _, u := range []*domain.User{admin, studentUser, donorUser} {
			if err := uow.UserRepository().Upsert(ctx, u); err != nil {
				return err
			}
		}

		student := &domain.StudentProfile{
			ID:                   uuid.New(),
			UserID:               studentUser.ID,
			FirstName:            "Sarah",
			LastName:             "Johnson",
			DateOfBirth:          time.Date(1998, 3, 15, 0, 0, 0, 0, time.UTC),
			Phone:                ptr("555-0123"),
			Address:              "123 College Ave",
			City:                 "Boston",
			State:                "MA",
			ZipCode:              "02115",
			SchoolName:           "Boston University",
			Major:                "Computer Science",
			GraduationDate:       ptr(time.Date(2022, 5, 15, 0, 0, 0, 0, time.UTC)),
			GPA:                  ptr(decimal.RequireFromString("3.75")),
			TotalDebtAmount:      decimal.NewFromInt(45000),
			MonthlyPayment:       ptr(decimal.NewFromInt(450)),
			InterestRate:         ptr(decimal.RequireFromString("0.055")),
			LoanServicer:         ptr("Federal Student Aid"),
			EmploymentStatus:     ptr("Employed"),
			AnnualIncome:         ptr(decimal.NewFromInt(55000)),
			DisplayName:          "Sarah J.",
			Bio:                  "Recent CS graduate working to pay off student loans while starting my career in tech.",
			IsPublic:             true,
			AllowDirectDonations: true,
			Status:               domain.VerificationPending,
			CreatedAt:            now,
		}
		if err := uow.StudentRepository().Create(ctx, student); err != nil {
			return err
		}

		if err := uow.DonorRepository().Create(ctx, &domain.DonorProfile{
			ID:        uuid.New(),
			UserID:    donorUser.ID,
			FirstName: "John",
			LastName:  "Smith",
			Company:   ptr("Tech Corp"),
			CreatedAt: now,
		}); err != nil {
			return err
		}

		campaignID := uuid.New()
		return uow.CampaignRepository().Create(ctx, &domain.GroupCampaign{
			ID:              campaignID,
			Name:            "CS Students Relief Fund",
			Description:     "Supporting computer science graduates with student debt",
			TargetAmount:    decimal.NewFromInt(50000),
			CurrentAmount:   decimal.Zero,
			IsActive:        true,
			IsTaxDeductible: true,
			StartDate:       now,
			EndDate:         ptr(now.AddDate(0, 0, 90)),
			Members: []domain.CampaignMember{{
				CampaignID:        campaignID,
				StudentID:         student.ID,
				AllocationPercent: decimal.NewFromInt(100),
			}},
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}
	okColor.Fprintln(c.out, "✓ seeded admin, student, donor and one campaign") //nolint:errcheck
	return nil
}
