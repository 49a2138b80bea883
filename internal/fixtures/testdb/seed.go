package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// SeedUser stores a user holding role.
func SeedUser(t testing.TB, uow repository.UnitOfWork, role domain.Role) *domain.User {
	t.Helper()
	id := uuid.New()
	u := &domain.User{
		ID:    id,
		Email: id.String()[:8] + "@example.com",
		Name:  string(role) + " user",
		Role:  role,
	}
	require.NoError(t, uow.UserRepository().Upsert(context.Background(), u))
	return u
}

// SeedDonor stores a donor user with a profile that has no customer id yet.
func SeedDonor(t testing.TB, uow repository.UnitOfWork) (*domain.User, *domain.DonorProfile) {
	t.Helper()
	u := SeedUser(t, uow, domain.RoleDonor)
	p := &domain.DonorProfile{
		ID:        uuid.New(),
		UserID:    u.ID,
		FirstName: "Dana",
		LastName:  "Donor",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, uow.DonorRepository().Create(context.Background(), p))
	return u, p
}

// SeedStudent stores a student user with a profile in status.
func SeedStudent(t testing.TB, uow repository.UnitOfWork, status domain.VerificationStatus) (*domain.User, *domain.StudentProfile) {
	t.Helper()
	u := SeedUser(t, uow, domain.RoleStudent)
	p := &domain.StudentProfile{
		ID:                   uuid.New(),
		UserID:               u.ID,
		FirstName:            "Sarah",
		LastName:             "Johnson",
		DateOfBirth:          time.Date(1998, 3, 15, 0, 0, 0, 0, time.UTC),
		Address:              "123 College Ave",
		City:                 "Boston",
		State:                "MA",
		ZipCode:              "02115",
		SchoolName:           "Boston University",
		Major:                "Computer Science",
		TotalDebtAmount:      decimal.NewFromInt(45000),
		DisplayName:          "Sarah J.",
		Bio:                  "CS student",
		AllowDirectDonations: true,
		Status:               status,
		CreatedAt:            time.Now().UTC(),
	}
	require.NoError(t, uow.StudentRepository().Create(context.Background(), p))
	return u, p
}

// SeedCampaign stores a campaign. A nil endDate means open-ended.
func SeedCampaign(t testing.TB, uow repository.UnitOfWork, active bool, endDate *time.Time) *domain.GroupCampaign {
	t.Helper()
	c := &domain.GroupCampaign{
		ID:            uuid.New(),
		Name:          "CS Students Relief Fund",
		Description:   "Pooled relief for computer science graduates",
		TargetAmount:  decimal.NewFromInt(50000),
		CurrentAmount: decimal.Zero,
		IsActive:      active,
		StartDate:     time.Now().Add(-24 * time.Hour).UTC(),
		EndDate:       endDate,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, uow.CampaignRepository().Create(context.Background(), c))
	return c
}
