package publicapi

import (
	"mailpilot-backend/controllers"
	approvalhandler "mailpilot-backend/lib/approval"
	authutils "mailpilot-backend/lib/utils/auth-utils"
	"mailpilot-backend/models"
	apimodels "mailpilot-backend/models/api"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type decisionLinkApiController struct {
	controllers.BaseAPIController
}

func InitDecisionLinkApiRouters(app *fiber.App) {
	controller := decisionLinkApiController{}
	app.Route("approval", func(router fiber.Router) {
		router.Get("decision", controller.decide)
	})
}

// @Summary One-click decision from an email link
// @Tags Approvals
// @Description Records the decision carried by a signed link token; a repeated click returns the already final state
// @Param   token		query	string	true	"signed decision token"
// @Param   outcome		query	string	true	"approved or rejected"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/approval/decision [get]
func (c *decisionLinkApiController) decide(ctx *fiber.Ctx) error {
	tokenString := ctx.Query("token")
	if tokenString == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("decision token is missing"))
	}
	data, err := authutils.ParseActionToken(tokenString)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("decision link is invalid or expired"))
	}
	outcome := models.DecisionOutcome(ctx.Query("outcome"))
	if outcome != models.DecisionOutcomeApproved && outcome != models.DecisionOutcomeRejected {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("unsupported decision outcome"))
	}

	logger := log.
		WithField("space_id", data.SpaceID).
		WithField("request_id", data.RequestID)
	view, hMsg, err := approvalhandler.Instance.Decide(ctx.UserContext(), data.SpaceID, data.RequestID, data.ActorID, outcome, "decided via email link")
	if err != nil {
		return c.SendError(ctx, logger, err, "Failed to record the decision")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}
