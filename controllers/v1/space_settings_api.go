package apiv1

import (
	"mailpilot-backend/controllers"
	spacesettingshandler "mailpilot-backend/lib/space/settings/handler"
	"mailpilot-backend/middleware"
	apimodels "mailpilot-backend/models/api"
	spaceapimodels "mailpilot-backend/models/api/space"

	"github.com/gofiber/fiber/v2"
)

type spaceSettingsApiController struct {
	controllers.BaseAPIController
}

func InitSpaceSettingRouters(app *fiber.App) {
	controller := spaceSettingsApiController{}
	app.Route("settings", func(settingsRoute fiber.Router) {
		settingsRoute.Use(middleware.SpaceAdminRequired())

		settingsRoute.Get("list", controller.ListSettings)
		settingsRoute.Route(":code", func(codeRoute fiber.Router) {
			codeRoute.Put("", controller.UpdateSetting)
		})
	})
}

// @Summary Update a space setting value
// @Tags Space settings
// @Description Update a space setting value
// @Param   Authorization	header	string									true	"Authorization token"
// @Param 	code			path	string									true	"space setting code"
// @Param	body			body	spaceapimodels.UpdateSpaceSettingValue	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/settings/{code} [put]
func (c *spaceSettingsApiController) UpdateSetting(ctx *fiber.Ctx) error {
	settingCode, err := c.GetIDByKey(ctx, "code")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload spaceapimodels.UpdateSpaceSettingValue
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	err = spacesettingshandler.Instance.UpdateSettingValue(spaceID, settingCode, payload.Value)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to update the space setting")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary List space settings
// @Tags Space settings
// @Description List space settings
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]spaceapimodels.SpaceSettingView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/settings/list [get]
func (c *spaceSettingsApiController) ListSettings(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	list, err := spacesettingshandler.Instance.GetList(spaceID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list space settings")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}
