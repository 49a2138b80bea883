// Package notification lists the caller's notifications.
package notification

import (
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/middleware"
	authsvc "github.com/amirasaad/studentrelief/pkg/service/auth"
	notificationsvc "github.com/amirasaad/studentrelief/pkg/service/notification"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, svc *notificationsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	app.Get("/notifications", middleware.JwtProtected(cfg.Auth.Jwt, authSvc), ListNotifications(svc))
}

// ListNotifications returns the caller's newest notifications.
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /notifications [get]
// @Security Bearer
func ListNotifications(svc *notificationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := middleware.CurrentIdentity(c)
		list, err := svc.ListMine(c.UserContext(), id.UserID)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Notifications fetched", list)
	}
}
