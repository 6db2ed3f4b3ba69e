package apiv1

import (
	"fmt"
	"mailpilot-backend/controllers"
	approvalhandler "mailpilot-backend/lib/approval"
	"mailpilot-backend/middleware"
	apimodels "mailpilot-backend/models/api"
	approvalapimodels "mailpilot-backend/models/api/approval"
	"time"

	"github.com/gofiber/fiber/v2"
)

type approvalApiController struct {
	controllers.BaseAPIController
}

func InitApprovalApiRouters(app *fiber.App) {
	controller := approvalApiController{}
	app.Route("approval", func(approvalRoute fiber.Router) {
		approvalRoute.Post("trigger", controller.Trigger)
		approvalRoute.Post("pending", controller.ListPending)
		approvalRoute.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.GetByID)
			idRoute.Post("decision", controller.Decide)
			idRoute.Get("history", controller.History)
			idRoute.Get("history/xlsx", controller.ExportHistory)
		})
	})
}

// @Summary Run a workflow against an outgoing action
// @Tags Approvals
// @Description Evaluates auto-approve conditions and either approves the action immediately or opens an approval request
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body			body	approvalapimodels.TriggerData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.TriggerResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/approval/trigger [post]
func (c *approvalApiController) Trigger(ctx *fiber.Ctx) error {
	var payload approvalapimodels.TriggerData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	result, hMsg, err := approvalhandler.Instance.Trigger(ctx.UserContext(), spaceID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to run the approval workflow")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary List approval requests awaiting a decision
// @Tags Approvals
// @Description List approval requests awaiting a decision
// @Param   Authorization	header	string					true	"Authorization token"
// @Param	body			body	apimodels.Pagination	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]approvalapimodels.ApprovalRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/approval/pending [post]
func (c *approvalApiController) ListPending(ctx *fiber.Ctx) error {
	var payload apimodels.Pagination
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	list, rowCount, err := approvalhandler.Instance.ListPending(spaceID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to list pending approval requests")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Get an approval request
// @Tags Approvals
// @Description Get an approval request
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id				path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/approval/{id} [get]
func (c *approvalApiController) GetByID(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	view, hMsg, err := approvalhandler.Instance.GetByID(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get the approval request")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Record a decision on an approval request
// @Tags Approvals
// @Description Approves or rejects the current step; repeating a decision on a finished request returns its final state
// @Param   Authorization	header	string							true	"Authorization token"
// @Param   id				path	string							true	"rec ID"
// @Param	body			body	approvalapimodels.DecisionData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/approval/{id}/decision [post]
func (c *approvalApiController) Decide(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload approvalapimodels.DecisionData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	userID := middleware.GetUserID(ctx)
	view, hMsg, err := approvalhandler.Instance.Decide(ctx.UserContext(), spaceID, id, userID, payload.Outcome, payload.Comments)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to record the decision")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Decision history of an approval request
// @Tags Approvals
// @Description Decision history of an approval request
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id				path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.DecisionView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/approval/{id}/history [get]
func (c *approvalApiController) History(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	list, err := approvalhandler.Instance.History(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get the decision history")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Decision history export to Excel
// @Tags Approvals
// @Description Decision history export to Excel
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id				path	string	true	"rec ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/approval/{id}/history/xlsx [get]
func (c *approvalApiController) ExportHistory(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	spaceID := middleware.GetUserSpace(ctx)
	data, err := approvalhandler.Instance.ExportHistory(spaceID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to export the decision history to Excel")
	}
	fileName := fmt.Sprintf("decisions-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set("Content-Type", "application/vnd.ms-excel")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}
