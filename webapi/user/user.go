package user

import (
	"errors"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/middleware"
	authsvc "github.com/amirasaad/studentrelief/pkg/service/auth"
	profilesvc "github.com/amirasaad/studentrelief/pkg/service/profile"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, svc *profilesvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	group := app.Group("/user", middleware.JwtProtected(cfg.Auth.Jwt, authSvc))
	group.Post("/role", SetRole(svc))
	group.Post("/donor-profile", CreateDonorProfile(svc))
	group.Post("/student-profile", CreateStudentProfile(svc))
}

// SetRole stores the caller's role and returns a token carrying it.
// @Summary Set my role
// @Description Only an admin may grant ADMIN.
// @Tags users
// @Accept json
// @Produce json
// @Param request body SetRoleRequest true "Role"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /user/role [post]
// @Security Bearer
func SetRole(svc *profilesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SetRoleRequest](c)
		if input == nil {
			return err // error response already written
		}
		role, err := domain.ParseRole(input.Role)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid role", err)
		}
		id, _ := middleware.CurrentIdentity(c)
		_, token, err := svc.SetRole(c.UserContext(), id, role)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Role updated", SetRoleResponse{Role: string(role), Token: token})
	}
}

// CreateDonorProfile creates the caller's donor profile.
// @Summary Create donor profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body DonorProfileRequest true "Donor profile"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /user/donor-profile [post]
// @Security Bearer
func CreateDonorProfile(svc *profilesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[DonorProfileRequest](c)
		if input == nil {
			return err // error response already written
		}
		id, _ := middleware.CurrentIdentity(c)
		profile, err := svc.CreateDonorProfile(c.UserContext(), id, profilesvc.DonorProfileInput{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Company:     input.Company,
			Phone:       input.Phone,
			IsAnonymous: input.IsAnonymous,
		})
		if err != nil {
			return profileError(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Donor profile created", profile)
	}
}

// CreateStudentProfile creates the caller's student profile, pending verification.
// @Summary Create student profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body StudentProfileRequest true "Student profile"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /user/student-profile [post]
// @Security Bearer
func CreateStudentProfile(svc *profilesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[StudentProfileRequest](c)
		if input == nil {
			return err // error response already written
		}
		if !input.TotalDebtAmount.IsPositive() {
			return common.ProblemDetailsJSON(c, "Validation failed", nil, "totalDebtAmount must be positive")
		}
		id, _ := middleware.CurrentIdentity(c)
		profile, err := svc.CreateStudentProfile(c.UserContext(), id, profilesvc.StudentProfileInput{
			FirstName:           input.FirstName,
			LastName:            input.LastName,
			DateOfBirth:         input.DateOfBirth,
			Phone:               input.Phone,
			Address:             input.Address,
			City:                input.City,
			State:               input.State,
			ZipCode:             input.ZipCode,
			SchoolName:          input.SchoolName,
			Major:               input.Major,
			GraduationDate:      input.GraduationDate,
			GPA:                 input.GPA,
			TotalDebtAmount:     input.TotalDebtAmount,
			MonthlyPayment:      input.MonthlyPayment,
			InterestRatePercent: input.InterestRate,
			LoanServicer:        input.LoanServicer,
			EmploymentStatus:    input.EmploymentStatus,
			AnnualIncome:        input.AnnualIncome,
			DisplayName:         input.DisplayName,
			Bio:                 input.Bio,
		})
		if err != nil {
			return profileError(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Student profile created", profile)
	}
}

func profileError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return common.ProblemDetailsJSON(c, "Profile already exists", err)
	}
	return common.ErrorJSON(c, err)
}
