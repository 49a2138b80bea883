package donation

import (
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/middleware"
	authsvc "github.com/amirasaad/studentrelief/pkg/service/auth"
	donationsvc "github.com/amirasaad/studentrelief/pkg/service/donation"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, svc *donationsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	donor := []fiber.Handler{middleware.JwtProtected(cfg.Auth.Jwt, authSvc), middleware.RequireRole(domain.RoleDonor)}
	app.Post("/donations", append(donor, CreateDonation(svc))...)
	app.Get("/donations", append(donor, ListDonations(svc))...)
	app.Post("/donor/setup-payment-method", append(donor, SetupPaymentMethod(svc))...)
}

// CreateDonation starts a donation and returns the client secret used to
// confirm the payment in the browser.
// @Summary Create a donation
// @Description Validates the donation, creates a payment intent and records a PENDING donation.
// @Tags donations
// @Accept json
// @Produce json
// @Param request body CreateDonationRequest true "Donation"
// @Success 200 {object} donationsvc.CreateResult
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /donations [post]
// @Security Bearer
func CreateDonation(svc *donationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateDonationRequest](c)
		if input == nil {
			return err // error response already written
		}
		id, _ := middleware.CurrentIdentity(c)
		res, err := svc.Create(c.UserContext(), id, input.toDomain())
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return c.JSON(res)
	}
}

// ListDonations returns the caller's donations, newest first.
// @Summary List my donations
// @Tags donations
// @Produce json
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /donations [get]
// @Security Bearer
func ListDonations(svc *donationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := middleware.CurrentIdentity(c)
		list, err := svc.ListMine(c.UserContext(), id)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Donations fetched", list)
	}
}

// SetupPaymentMethod prepares saving a card for later donations.
// @Summary Set up a payment method
// @Tags donations
// @Produce json
// @Success 200 {object} donationsvc.SetupResult
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /donor/setup-payment-method [post]
// @Security Bearer
func SetupPaymentMethod(svc *donationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := middleware.CurrentIdentity(c)
		res, err := svc.SetupPaymentMethod(c.UserContext(), id)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return c.JSON(res)
	}
}
