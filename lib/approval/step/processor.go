package step

import (
	"context"
	"fmt"
	"mailpilot-backend/config"
	businesshourshandler "mailpilot-backend/lib/business-hours"
	customerhistoryhandler "mailpilot-backend/lib/customer-history"
	spaceusersstore "mailpilot-backend/lib/space/users/store"
	authutils "mailpilot-backend/lib/utils/auth-utils"
	"mailpilot-backend/lib/utils/helpers"
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"
	"runtime/debug"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Outcome string

const (
	OutcomeAutoApproved     Outcome = "auto_approved"
	OutcomeAwaitingDecision Outcome = "awaiting_decision"
	OutcomeError            Outcome = "error"
)

type Result struct {
	Outcome       Outcome
	Notifications []models.Notification
	Reason        string
}

func awaiting(reason string, notifications ...models.Notification) Result {
	return Result{
		Outcome:       OutcomeAwaitingDecision,
		Notifications: notifications,
		Reason:        reason,
	}
}

// Processor routes the current step of a request to the handler registered
// for its type. Dispatch never blocks on a human decision: it either resolves
// the step synchronously (automatic checks) or reports that the request is
// now awaiting one, with the notifications to deliver.
type Processor interface {
	Dispatch(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) Result
}

type handlerFunc func(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) Result

func NewProcessor(usersStore spaceusersstore.Provider,
	businessHours businesshourshandler.Provider,
	customerHistory customerhistoryhandler.Provider,
	checkTimeout time.Duration) Processor {
	p := &impl{
		usersStore:      usersStore,
		businessHours:   businessHours,
		customerHistory: customerHistory,
		checkTimeout:    checkTimeout,
	}
	// the registry is built in one place so a new step type cannot silently
	// fall through to a default branch
	p.registry = map[models.StepType]handlerFunc{
		models.StepTypeManagerApproval:      p.processManagerApproval,
		models.StepTypeAutomaticCheck:       p.processAutomaticCheck,
		models.StepTypeExternalReview:       p.processExternalReview,
		models.StepTypeCustomerConfirmation: p.processCustomerConfirmation,
		models.StepTypeDefaultApproval:      p.processDefaultApproval,
	}
	return p
}

type impl struct {
	usersStore      spaceusersstore.Provider
	businessHours   businesshourshandler.Provider
	customerHistory customerhistoryhandler.Provider
	checkTimeout    time.Duration
	registry        map[models.StepType]handlerFunc
}

func (i impl) GetLogger(req dbmodels.ApprovalRequest, step dbmodels.WorkflowStep) *log.Entry {
	return log.
		WithField("space_id", req.SpaceID).
		WithField("request_id", req.ID).
		WithField("step_index", req.CurrentStepIndex).
		WithField("step_type", step.Type)
}

func (i impl) Dispatch(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) (result Result) {
	logger := i.GetLogger(req, step)
	defer func() {
		// a broken handler escalates to manual review, never a silent
		// approval or rejection
		if r := recover(); r != nil {
			logger.
				WithField("panic_stack", string(debug.Stack())).
				Errorf("panic in step handler: (%v)", r)
			result = awaiting(fmt.Sprintf("step handler failed: %v", r))
		}
	}()
	handler, ok := i.registry[step.Type]
	if !ok {
		logger.Error("no handler registered for step type")
		return awaiting(fmt.Sprintf("unsupported step type %v, manual decision required", step.Type))
	}
	return handler(ctx, req, wf, step)
}

func (i impl) processManagerApproval(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) Result {
	logger := i.GetLogger(req, step)
	users, err := i.usersStore.GetByIDs(req.SpaceID, step.Recipients)
	if err != nil {
		logger.WithError(err).Error("failed to load the configured managers")
		return Result{Outcome: OutcomeError, Reason: "failed to load the configured managers"}
	}
	notifications := make([]models.Notification, 0, len(users))
	for _, user := range users {
		if !user.IsActive || user.Email == "" {
			continue
		}
		item, err := i.buildDecisionNotification(req, wf, user.Email, user.ID)
		if err != nil {
			logger.WithError(err).WithField("user_id", user.ID).Error("failed to build a manager notification")
			continue
		}
		notifications = append(notifications, item)
	}
	return awaiting("manager decision required", notifications...)
}

func (i impl) processExternalReview(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) Result {
	logger := i.GetLogger(req, step)
	notifications := make([]models.Notification, 0, len(step.Recipients))
	for _, address := range step.Recipients {
		if address == "" {
			continue
		}
		item, err := i.buildDecisionNotification(req, wf, address, address)
		if err != nil {
			logger.WithError(err).WithField("recipient", address).Error("failed to build a reviewer notification")
			continue
		}
		notifications = append(notifications, item)
	}
	return awaiting("external review required", notifications...)
}

func (i impl) processCustomerConfirmation(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) Result {
	logger := i.GetLogger(req, step)
	email, _ := req.Context["customer_email"].(string)
	if email == "" {
		logger.Warn("customer confirmation step without a customer email in the request context")
		return awaiting("customer email is unknown, manual decision required")
	}
	item, err := i.buildDecisionNotification(req, wf, email, email)
	if err != nil {
		logger.WithError(err).Error("failed to build the customer notification")
		return awaiting("customer confirmation required")
	}
	return awaiting("customer confirmation required", item)
}

func (i impl) processDefaultApproval(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) Result {
	logger := i.GetLogger(req, step)
	if wf.OwnerUserID == "" {
		return awaiting("workflow has no owner, manual decision required")
	}
	owner, err := i.usersStore.GetByID(wf.OwnerUserID)
	if err != nil {
		logger.WithError(err).Error("failed to load the workflow owner")
		return Result{Outcome: OutcomeError, Reason: "failed to load the workflow owner"}
	}
	if owner == nil || owner.Email == "" {
		return awaiting("workflow owner is unknown, manual decision required")
	}
	item, err := i.buildDecisionNotification(req, wf, owner.Email, owner.ID)
	if err != nil {
		logger.WithError(err).Error("failed to build the owner notification")
		return awaiting("owner decision required")
	}
	return awaiting("owner decision required", item)
}

func (i impl) processAutomaticCheck(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, step dbmodels.WorkflowStep) Result {
	logger := i.GetLogger(req, step)
	for _, check := range step.Checks {
		passed, err := i.runCheck(ctx, req, check)
		if err != nil {
			// an erroring check falls through to a manual override
			logger.WithError(err).WithField("check", check).Warn("automatic check failed to run")
			return awaiting(fmt.Sprintf("check %v failed to run, manual decision required", check))
		}
		if !passed {
			return awaiting(fmt.Sprintf("check %v did not pass, manual decision required", check))
		}
	}
	return Result{
		Outcome: OutcomeAutoApproved,
		Reason:  "all automatic checks passed",
	}
}

// defaultStopPhrases is the built-in content filter list for automatic checks
var defaultStopPhrases = []string{
	"legal action",
	"lawsuit",
	"refund immediately",
	"chargeback",
	"complaint",
	"urgent escalation",
}

func (i impl) runCheck(ctx context.Context, req dbmodels.ApprovalRequest, check models.CheckType) (bool, error) {
	switch check {
	case models.CheckBusinessHours:
		callCtx, cancel := context.WithTimeout(ctx, i.checkTimeout)
		defer cancel()
		return i.businessHours.IsBusinessHours(callCtx, req.SpaceID, time.Now())
	case models.CheckCustomerHistory:
		email, _ := req.Context["customer_email"].(string)
		callCtx, cancel := context.WithTimeout(ctx, i.checkTimeout)
		defer cancel()
		return i.customerHistory.IsKnownCustomer(callCtx, req.SpaceID, email)
	case models.CheckContentFilter:
		text := helpers.PayloadText(req.ActionPayload)
		for _, phrase := range defaultStopPhrases {
			if strings.Contains(text, phrase) {
				return false, nil
			}
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown check type: %v", check)
}

func (i impl) buildDecisionNotification(req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, recipient, actorID string) (models.Notification, error) {
	token, err := authutils.GetActionToken(req.SpaceID, req.ID, actorID)
	if err != nil {
		return models.Notification{}, err
	}
	link := fmt.Sprintf("%s/api/v1/public/approval/decision?token=%s",
		strings.TrimRight(config.Conf.App.PublicURL, "/"), token)

	subject := fmt.Sprintf("Approval required: %s", wf.Name)
	summary, _ := req.ActionPayload["subject"].(string)
	message := fmt.Sprintf(
		"An automated action is waiting for your decision.\n\nWorkflow: %s\nAction: %s\nValid until: %s\n\nApprove: %s&outcome=approved\nReject: %s&outcome=rejected\n",
		wf.Name, summary, req.TimeoutAt.Format(time.RFC1123), link, link)
	return models.Notification{
		Type:       models.NotificationTypeEmail,
		Recipient:  recipient,
		Subject:    subject,
		Message:    message,
		ActionLink: link,
	}, nil
}
