// Package admin exposes the student verification workflow to admins.
package admin

import (
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/middleware"
	authsvc "github.com/amirasaad/studentrelief/pkg/service/auth"
	"github.com/amirasaad/studentrelief/pkg/service/verification"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, svc *verification.Service, authSvc *authsvc.Service, cfg *config.App) {
	group := app.Group("/admin", middleware.JwtProtected(cfg.Auth.Jwt, authSvc), middleware.RequireRole(domain.RoleAdmin))
	group.Post("/verify-student", VerifyStudent(svc))
	group.Get("/students", ListStudents(svc))
}

// VerifyStudent approves or rejects a student profile.
// @Summary Verify a student
// @Description Records the decision, an audit entry and one notification to the student.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body VerifyStudentRequest true "Decision"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /admin/verify-student [post]
// @Security Bearer
func VerifyStudent(svc *verification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[VerifyStudentRequest](c)
		if input == nil {
			return err // error response already written
		}
		id, _ := middleware.CurrentIdentity(c)
		student, err := svc.Decide(c.UserContext(), id.UserID, input.StudentID, domain.Decision(input.Action), input.Notes)
		if err != nil {
			if common.ErrorToStatusCode(err) == fiber.StatusNotFound {
				return common.ProblemDetailsJSON(c, "Student not found", err)
			}
			return common.ErrorJSON(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "student": student})
	}
}

// ListStudents lists students by verification status, PENDING by default.
// @Summary List students by verification status
// @Tags admin
// @Produce json
// @Param status query string false "PENDING, VERIFIED or REJECTED"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /admin/students [get]
// @Security Bearer
func ListStudents(svc *verification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := domain.VerificationStatus(c.Query("status", string(domain.VerificationPending)))
		list, err := svc.ListByStatus(c.UserContext(), status)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Students fetched", list)
	}
}
