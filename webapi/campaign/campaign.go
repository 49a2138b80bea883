// Package campaign exposes the public campaign listing.
package campaign

import (
	campaignsvc "github.com/amirasaad/studentrelief/pkg/service/campaign"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func Routes(app *fiber.App, svc *campaignsvc.Service) {
	app.Get("/campaigns", ListActive(svc))
	app.Get("/campaigns/:id", GetCampaign(svc))
}

// ListActive returns campaigns currently accepting donations.
// @Summary List active campaigns
// @Tags campaigns
// @Produce json
// @Success 200 {object} common.Response
// @Failure 500 {object} common.ProblemDetails
// @Router /campaigns [get]
func ListActive(svc *campaignsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.ListActive(c.UserContext())
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Campaigns fetched", list)
	}
}

// GetCampaign returns one campaign with its members.
// @Summary Get a campaign
// @Tags campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /campaigns/{id} [get]
func GetCampaign(svc *campaignsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid campaign ID", err, "Campaign ID must be a valid UUID", fiber.StatusBadRequest)
		}
		campaign, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Campaign not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Campaign fetched", campaign)
	}
}
