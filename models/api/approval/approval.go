package approvalapimodels

import (
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

type TriggerData struct {
	WorkflowID    string                 `json:"workflow_id"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Context       map[string]interface{} `json:"context"`
}

func (v TriggerData) Validate() error {
	if v.WorkflowID == "" {
		return errors.New("workflow id is missing")
	}
	return nil
}

type TriggerResult struct {
	AutoApproved bool                  `json:"auto_approved"`
	RequestID    string                `json:"request_id,omitempty"`
	Status       models.ApprovalStatus `json:"status,omitempty"`
}

type DecisionData struct {
	Outcome  models.DecisionOutcome `json:"outcome"`
	Comments string                 `json:"comments"`
}

func (v DecisionData) Validate() error {
	if v.Outcome != models.DecisionOutcomeApproved && v.Outcome != models.DecisionOutcomeRejected {
		return errors.Errorf("unsupported decision outcome: %v", v.Outcome)
	}
	return nil
}

type ApprovalRequestView struct {
	ID               string                 `json:"id"`
	WorkflowID       string                 `json:"workflow_id"`
	WorkflowName     string                 `json:"workflow_name,omitempty"`
	Status           models.ApprovalStatus  `json:"status"`
	StatusName       string                 `json:"status_name"`
	CurrentStepIndex int                    `json:"current_step_index"`
	ActionPayload    map[string]interface{} `json:"action_payload"`
	Context          map[string]interface{} `json:"context,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	TimeoutAt        time.Time              `json:"timeout_at"`
}

func ApprovalRequestConvert(rec dbmodels.ApprovalRequest) ApprovalRequestView {
	workflowName := ""
	if rec.Workflow != nil {
		workflowName = rec.Workflow.Name
	}
	return ApprovalRequestView{
		ID:               rec.ID,
		WorkflowID:       rec.WorkflowID,
		WorkflowName:     workflowName,
		Status:           rec.Status,
		StatusName:       rec.Status.ToHuman(),
		CurrentStepIndex: rec.CurrentStepIndex,
		ActionPayload:    rec.ActionPayload,
		Context:          rec.Context,
		CreatedAt:        rec.CreatedAt,
		TimeoutAt:        rec.TimeoutAt,
	}
}

type DecisionView struct {
	StepIndex int                    `json:"step_index"`
	Outcome   models.DecisionOutcome `json:"outcome"`
	ActorID   string                 `json:"actor_id"`
	Comments  string                 `json:"comments,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func DecisionConvert(rec dbmodels.ApprovalDecision) DecisionView {
	return DecisionView{
		StepIndex: rec.StepIndex,
		Outcome:   rec.Outcome,
		ActorID:   rec.ActorID,
		Comments:  rec.Comments,
		Timestamp: rec.CreatedAt,
	}
}
