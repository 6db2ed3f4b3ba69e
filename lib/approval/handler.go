package approvalhandler

import (
	"bytes"
	"context"
	"fmt"
	"mailpilot-backend/db"
	"mailpilot-backend/lib/approval/condition"
	approvaldecisionstore "mailpilot-backend/lib/approval/decision-store"
	"mailpilot-backend/lib/approval/step"
	approvalstore "mailpilot-backend/lib/approval/store"
	draftarchive "mailpilot-backend/lib/draft-archive"
	xlsexport "mailpilot-backend/lib/export/xls"
	notificationhandler "mailpilot-backend/lib/notification"
	"mailpilot-backend/lib/utils/lock"
	workflowstore "mailpilot-backend/lib/workflow/store"
	"mailpilot-backend/models"
	apimodels "mailpilot-backend/models/api"
	approvalapimodels "mailpilot-backend/models/api/approval"
	dbmodels "mailpilot-backend/models/db"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Provider is the approval request manager: the only component that creates
// approval requests and the single entry point for decisions, whether they
// come from a human, an automatic check, or the timeout sweep.
type Provider interface {
	Trigger(ctx context.Context, spaceID string, data approvalapimodels.TriggerData) (result approvalapimodels.TriggerResult, hMsg string, err error)
	Decide(ctx context.Context, spaceID, requestID, actorID string, outcome models.DecisionOutcome, comments string) (view approvalapimodels.ApprovalRequestView, hMsg string, err error)
	GetByID(spaceID, id string) (view approvalapimodels.ApprovalRequestView, hMsg string, err error)
	ListPending(spaceID string, pagination apimodels.Pagination) (list []approvalapimodels.ApprovalRequestView, rowCount int64, err error)
	History(spaceID, requestID string) ([]approvalapimodels.DecisionView, error)
	ExportHistory(spaceID, requestID string) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler(evaluator condition.Evaluator, processor step.Processor, lockWait time.Duration) {
	Instance = impl{
		store:         approvalstore.NewInstance(db.DB),
		decisionStore: approvaldecisionstore.NewInstance(db.DB),
		workflowStore: workflowstore.NewInstance(db.DB),
		evaluator:     evaluator,
		processor:     processor,
		notifier:      notificationhandler.Instance,
		archive:       draftarchive.Instance,
		lockWait:      lockWait,
	}
}

// NewInstanceWithDeps builds a manager over explicit collaborators
func NewInstanceWithDeps(store approvalstore.Provider,
	decisionStore approvaldecisionstore.Provider,
	workflowStore workflowstore.Provider,
	evaluator condition.Evaluator,
	processor step.Processor,
	notifier notificationhandler.Provider,
	archive draftarchive.Provider,
	lockWait time.Duration) Provider {
	return impl{
		store:         store,
		decisionStore: decisionStore,
		workflowStore: workflowStore,
		evaluator:     evaluator,
		processor:     processor,
		notifier:      notifier,
		archive:       archive,
		lockWait:      lockWait,
	}
}

type impl struct {
	store         approvalstore.Provider
	decisionStore approvaldecisionstore.Provider
	workflowStore workflowstore.Provider
	evaluator     condition.Evaluator
	processor     step.Processor
	notifier      notificationhandler.Provider
	archive       draftarchive.Provider
	lockWait      time.Duration
}

func (i impl) GetLogger(spaceID, requestID string) *log.Entry {
	logger := log.
		WithField("space_id", spaceID)
	if requestID != "" {
		logger = logger.WithField("request_id", requestID)
	}
	return logger
}

func lockKey(requestID string) string {
	return fmt.Sprintf("approval-request:%v", requestID)
}

func (i impl) Trigger(ctx context.Context, spaceID string, data approvalapimodels.TriggerData) (approvalapimodels.TriggerResult, string, error) {
	logger := i.GetLogger(spaceID, "").WithField("workflow_id", data.WorkflowID)
	wf, err := i.workflowStore.GetByID(spaceID, data.WorkflowID)
	if err != nil {
		logger.WithError(err).Error("failed to load the workflow definition")
		return approvalapimodels.TriggerResult{}, "", err
	}
	if wf == nil {
		return approvalapimodels.TriggerResult{}, fmt.Sprintf("workflow %v not found", data.WorkflowID), nil
	}
	if !wf.Enabled {
		return approvalapimodels.TriggerResult{}, fmt.Sprintf("workflow %v is disabled", wf.Name), nil
	}

	payload := dbmodels.JSONMap(data.ActionPayload)
	reqContext := dbmodels.JSONMap(data.Context)

	// one satisfied auto-approve condition bypasses the chain entirely, no
	// request record is persisted
	if i.evaluator.AnyMatch(ctx, spaceID, wf.AutoApproveConditions, payload, reqContext) {
		logger.Info("action auto-approved by workflow conditions")
		return approvalapimodels.TriggerResult{AutoApproved: true}, "", nil
	}

	now := time.Now()
	rec := dbmodels.ApprovalRequest{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: spaceID,
		},
		WorkflowID:       wf.ID,
		ActionPayload:    payload,
		Context:          reqContext,
		Status:           models.ApprovalStatusPending,
		CurrentStepIndex: 0,
		TimeoutAt:        now.Add(time.Duration(wf.RequestTimeoutHours()) * time.Hour),
	}
	recID, err := i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("failed to create the approval request")
		return approvalapimodels.TriggerResult{}, "", errors.Wrap(err, "failed to create the approval request")
	}
	rec.ID = recID
	rec.CreatedAt = now
	logger = i.GetLogger(spaceID, recID)

	i.archivePayload(ctx, &rec)

	var notifications []models.Notification
	locked, err := lock.WithDelay(ctx, lockKey(recID), i.lockWait, func() error {
		var dispatchErr error
		notifications, dispatchErr = i.dispatchCurrentStep(ctx, &rec, *wf)
		return dispatchErr
	})
	if err != nil {
		// the request stays pending, the approval window still applies
		logger.WithError(err).Error("first step dispatch failed, request left pending")
	}
	if !locked {
		logger.Warn("could not acquire the request lock for the first dispatch")
	}
	i.notifier.Send(spaceID, recID, notifications)

	return approvalapimodels.TriggerResult{
		AutoApproved: false,
		RequestID:    recID,
		Status:       rec.Status,
	}, "", nil
}

func (i impl) Decide(ctx context.Context, spaceID, requestID, actorID string, outcome models.DecisionOutcome, comments string) (approvalapimodels.ApprovalRequestView, string, error) {
	logger := i.GetLogger(spaceID, requestID).
		WithField("actor_id", actorID).
		WithField("outcome", outcome)
	if !outcome.IsValid() {
		return approvalapimodels.ApprovalRequestView{}, fmt.Sprintf("unsupported decision outcome: %v", outcome), nil
	}
	rec, err := i.getRec(spaceID, requestID)
	if err != nil {
		return approvalapimodels.ApprovalRequestView{}, "", err
	}
	if rec == nil {
		return approvalapimodels.ApprovalRequestView{}, "approval request not found", nil
	}
	// a decision against an already finished request is a benign race, the
	// existing terminal state is the answer
	if rec.Status.IsTerminal() {
		return approvalapimodels.ApprovalRequestConvert(*rec), "", nil
	}
	wf, err := i.getWorkflow(*rec)
	if err != nil {
		return approvalapimodels.ApprovalRequestView{}, "", err
	}

	var notifications []models.Notification
	locked, err := lock.WithDelay(ctx, lockKey(requestID), i.lockWait, func() error {
		fresh, lockedErr := i.getRec(spaceID, requestID)
		if lockedErr != nil {
			return lockedErr
		}
		if fresh == nil {
			return errors.New("approval request disappeared")
		}
		if fresh.Status.IsTerminal() {
			rec = fresh
			return nil
		}
		notifications, lockedErr = i.applyDecisionLocked(ctx, fresh, wf, outcome, actorID, comments)
		rec = fresh
		return lockedErr
	})
	if err != nil {
		logger.WithError(err).Error("failed to apply the decision")
		return approvalapimodels.ApprovalRequestView{}, "", err
	}
	if !locked {
		return approvalapimodels.ApprovalRequestView{}, "approval request is busy, try again", nil
	}
	i.notifier.Send(spaceID, requestID, notifications)
	return approvalapimodels.ApprovalRequestConvert(*rec), "", nil
}

// applyDecisionLocked moves the request through the state machine. The caller
// must hold the per-request lock. An auto-approved next step feeds back into
// the same loop as an internal system decision.
func (i impl) applyDecisionLocked(ctx context.Context, rec *dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, outcome models.DecisionOutcome, actorID, comments string) ([]models.Notification, error) {
	logger := i.GetLogger(rec.SpaceID, rec.ID)
	notifications := []models.Notification{}
	for {
		steps := wf.EffectiveSteps()

		if outcome != models.DecisionOutcomeApproved {
			terminal := outcome.TerminalStatus()
			if outcome == models.DecisionOutcomeTimeout {
				terminal = wf.TimeoutTerminalStatus()
			}
			applied, err := i.store.TransitionStatus(rec.SpaceID, rec.ID, models.OpenStatuses(),
				map[string]interface{}{"Status": terminal})
			if err != nil {
				return notifications, err
			}
			if !applied {
				// someone else finished the request first
				return notifications, i.reload(rec)
			}
			rec.Status = terminal
			i.logDecision(*rec, rec.CurrentStepIndex, outcome, actorID, comments)
			return notifications, nil
		}

		if rec.CurrentStepIndex >= len(steps)-1 {
			applied, err := i.store.TransitionStatus(rec.SpaceID, rec.ID, models.OpenStatuses(),
				map[string]interface{}{"Status": models.ApprovalStatusApproved})
			if err != nil {
				return notifications, err
			}
			if !applied {
				return notifications, i.reload(rec)
			}
			rec.Status = models.ApprovalStatusApproved
			i.logDecision(*rec, rec.CurrentStepIndex, models.DecisionOutcomeApproved, actorID, comments)
			return notifications, nil
		}

		// approved on a non-final step: advance the index by exactly one
		applied, err := i.store.AdvanceStep(rec.SpaceID, rec.ID, rec.CurrentStepIndex,
			map[string]interface{}{
				"CurrentStepIndex": rec.CurrentStepIndex + 1,
				"Status":           models.ApprovalStatusPending,
			})
		if err != nil {
			return notifications, err
		}
		if !applied {
			return notifications, i.reload(rec)
		}
		i.logDecision(*rec, rec.CurrentStepIndex, models.DecisionOutcomeApproved, actorID, comments)
		rec.CurrentStepIndex++
		rec.Status = models.ApprovalStatusPending

		res := i.processor.Dispatch(ctx, *rec, wf, steps[rec.CurrentStepIndex])
		if res.Outcome == step.OutcomeAutoApproved {
			outcome = models.DecisionOutcomeApproved
			actorID = models.SystemActorID
			comments = res.Reason
			continue
		}
		if res.Outcome == step.OutcomeError {
			logger.WithField("reason", res.Reason).Error("step handler failed, request left awaiting a manual decision")
		}
		if err = i.markAwaiting(rec); err != nil {
			return notifications, err
		}
		notifications = append(notifications, res.Notifications...)
		return notifications, nil
	}
}

// dispatchCurrentStep runs the first dispatch after creation; the caller must
// hold the per-request lock
func (i impl) dispatchCurrentStep(ctx context.Context, rec *dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition) ([]models.Notification, error) {
	steps := wf.EffectiveSteps()
	res := i.processor.Dispatch(ctx, *rec, wf, steps[rec.CurrentStepIndex])
	if res.Outcome == step.OutcomeAutoApproved {
		return i.applyDecisionLocked(ctx, rec, wf, models.DecisionOutcomeApproved, models.SystemActorID, res.Reason)
	}
	if res.Outcome == step.OutcomeError {
		i.GetLogger(rec.SpaceID, rec.ID).WithField("reason", res.Reason).Error("step handler failed, request left awaiting a manual decision")
	}
	if err := i.markAwaiting(rec); err != nil {
		return nil, err
	}
	return res.Notifications, nil
}

func (i impl) markAwaiting(rec *dbmodels.ApprovalRequest) error {
	applied, err := i.store.TransitionStatus(rec.SpaceID, rec.ID,
		[]models.ApprovalStatus{models.ApprovalStatusPending},
		map[string]interface{}{"Status": models.ApprovalStatusAwaitingDecision})
	if err != nil {
		return err
	}
	if applied {
		rec.Status = models.ApprovalStatusAwaitingDecision
	}
	return nil
}

func (i impl) GetByID(spaceID, id string) (approvalapimodels.ApprovalRequestView, string, error) {
	rec, err := i.getRec(spaceID, id)
	if err != nil {
		return approvalapimodels.ApprovalRequestView{}, "", err
	}
	if rec == nil {
		return approvalapimodels.ApprovalRequestView{}, "approval request not found", nil
	}
	return approvalapimodels.ApprovalRequestConvert(*rec), "", nil
}

func (i impl) ListPending(spaceID string, pagination apimodels.Pagination) ([]approvalapimodels.ApprovalRequestView, int64, error) {
	page, limit := pagination.GetPage()
	list, rowCount, err := i.store.ListPending(spaceID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]approvalapimodels.ApprovalRequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, approvalapimodels.ApprovalRequestConvert(rec))
	}
	return result, rowCount, nil
}

func (i impl) History(spaceID, requestID string) ([]approvalapimodels.DecisionView, error) {
	list, err := i.decisionStore.List(spaceID, requestID)
	if err != nil {
		return nil, err
	}
	result := make([]approvalapimodels.DecisionView, 0, len(list))
	for _, rec := range list {
		result = append(result, approvalapimodels.DecisionConvert(rec))
	}
	return result, nil
}

func (i impl) ExportHistory(spaceID, requestID string) (*bytes.Buffer, error) {
	list, err := i.decisionStore.List(spaceID, requestID)
	if err != nil {
		return nil, err
	}
	return xlsexport.Instance.ExportDecisionHistory(list)
}

func (i impl) getRec(spaceID, id string) (*dbmodels.ApprovalRequest, error) {
	rec, err := i.store.GetByID(spaceID, id)
	if err != nil {
		i.GetLogger(spaceID, id).WithError(err).Error("failed to load the approval request")
		return nil, err
	}
	return rec, nil
}

func (i impl) getWorkflow(rec dbmodels.ApprovalRequest) (dbmodels.WorkflowDefinition, error) {
	if rec.Workflow != nil {
		return *rec.Workflow, nil
	}
	wf, err := i.workflowStore.GetByID(rec.SpaceID, rec.WorkflowID)
	if err != nil {
		return dbmodels.WorkflowDefinition{}, err
	}
	if wf == nil {
		// the definition is gone, the implicit default step still lets the
		// request finish
		i.GetLogger(rec.SpaceID, rec.ID).Warn("workflow definition missing for an open request")
		return dbmodels.WorkflowDefinition{}, nil
	}
	return *wf, nil
}

func (i impl) reload(rec *dbmodels.ApprovalRequest) error {
	fresh, err := i.store.GetByID(rec.SpaceID, rec.ID)
	if err != nil {
		return err
	}
	if fresh != nil {
		*rec = *fresh
	}
	return nil
}

func (i impl) archivePayload(ctx context.Context, rec *dbmodels.ApprovalRequest) {
	logger := i.GetLogger(rec.SpaceID, rec.ID)
	objectKey, err := i.archive.ArchivePayload(ctx, rec.SpaceID, rec.ID, rec.ActionPayload)
	if err != nil {
		logger.WithError(err).Error("failed to archive the action payload")
		return
	}
	if objectKey == "" {
		return
	}
	if err = i.store.SetArchiveKey(rec.SpaceID, rec.ID, objectKey); err != nil {
		logger.WithError(err).Error("failed to save the archive object key")
		return
	}
	rec.ArchiveObjectKey = objectKey
}

// logDecision appends one audit record per applied transition; an audit
// write failure is logged but never rolls the transition back
func (i impl) logDecision(rec dbmodels.ApprovalRequest, stepIndex int, outcome models.DecisionOutcome, actorID, comments string) {
	_, err := i.decisionStore.Create(dbmodels.ApprovalDecision{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: rec.SpaceID,
		},
		RequestID: rec.ID,
		StepIndex: stepIndex,
		Outcome:   outcome,
		ActorID:   actorID,
		Comments:  comments,
	})
	if err != nil {
		i.GetLogger(rec.SpaceID, rec.ID).WithError(err).Error("failed to append the decision log record")
	}
}
