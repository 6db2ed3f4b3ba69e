package apiv1

import (
	"mailpilot-backend/controllers"
	spaceusershander "mailpilot-backend/lib/space/users/hander"
	"mailpilot-backend/middleware"
	apimodels "mailpilot-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

type spaceUsersApiController struct {
	controllers.BaseAPIController
}

func InitSpaceUserRouters(app *fiber.App) {
	controller := spaceUsersApiController{}
	app.Route("users", func(usersRoute fiber.Router) {
		usersRoute.Get("list", controller.List)
		usersRoute.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.GetByID)
		})
	})
}

// @Summary List space users
// @Tags Space users
// @Description List space users
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]spaceapimodels.SpaceUserView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/users/list [get]
func (c *spaceUsersApiController) List(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	list, err := spaceusershander.Instance.GetListUsers(spaceID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list space users")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Get a space user
// @Tags Space users
// @Description Get a space user
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id				path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=spaceapimodels.SpaceUserView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/users/{id} [get]
func (c *spaceUsersApiController) GetByID(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	user, err := spaceusershander.Instance.GetByID(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get the space user")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(user))
}
