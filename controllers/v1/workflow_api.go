package apiv1

import (
	"mailpilot-backend/controllers"
	workflowhandler "mailpilot-backend/lib/workflow"
	"mailpilot-backend/middleware"
	apimodels "mailpilot-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

type workflowApiController struct {
	controllers.BaseAPIController
}

func InitWorkflowApiRouters(app *fiber.App) {
	controller := workflowApiController{}
	app.Route("workflow", func(workflowRoute fiber.Router) {
		workflowRoute.Get("list", controller.List)
		workflowRoute.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.GetByID)
			idRoute.Put("enabled", middleware.SpaceAdminRequired(), controller.SetEnabled)
		})
	})
}

// @Summary List workflow definitions
// @Tags Workflows
// @Description List workflow definitions, highest priority first
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.WorkflowView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/workflow/list [get]
func (c *workflowApiController) List(ctx *fiber.Ctx) error {
	spaceID := middleware.GetUserSpace(ctx)
	list, err := workflowhandler.Instance.List(spaceID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list workflows")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Get a workflow definition
// @Tags Workflows
// @Description Get a workflow definition
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id				path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.WorkflowView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/workflow/{id} [get]
func (c *workflowApiController) GetByID(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	view, hMsg, err := workflowhandler.Instance.GetByID(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get the workflow")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

type workflowEnabledData struct {
	Enabled bool `json:"enabled"`
}

// @Summary Enable or disable a workflow
// @Tags Workflows
// @Description Enable or disable a workflow; a disabled workflow rejects new triggers, open requests keep going
// @Param   Authorization	header	string					true	"Authorization token"
// @Param   id				path	string					true	"rec ID"
// @Param	body			body	workflowEnabledData		true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/workflow/{id}/enabled [put]
func (c *workflowApiController) SetEnabled(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload workflowEnabledData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	hMsg, err := workflowhandler.Instance.SetEnabled(spaceID, id, payload.Enabled)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to update the workflow")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
