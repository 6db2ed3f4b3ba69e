package approvalapimodels

import (
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"
)

type WorkflowStepView struct {
	Type             models.StepType    `json:"type"`
	Recipients       []string           `json:"recipients,omitempty"`
	Checks           []models.CheckType `json:"checks,omitempty"`
	StepTimeoutHours int                `json:"step_timeout_hours,omitempty"`
}

type WorkflowView struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Enabled        bool                   `json:"enabled"`
	Priority       int                    `json:"priority"`
	TimeoutHours   int                    `json:"timeout_hours"`
	TimeoutOutcome models.DecisionOutcome `json:"timeout_outcome,omitempty"`
	Steps          []WorkflowStepView     `json:"steps"`
}

func WorkflowConvert(rec dbmodels.WorkflowDefinition) WorkflowView {
	steps := make([]WorkflowStepView, 0, len(rec.EffectiveSteps()))
	for _, step := range rec.EffectiveSteps() {
		steps = append(steps, WorkflowStepView{
			Type:             step.Type,
			Recipients:       step.Recipients,
			Checks:           step.Checks,
			StepTimeoutHours: step.StepTimeoutHours,
		})
	}
	return WorkflowView{
		ID:             rec.ID,
		Name:           rec.Name,
		Enabled:        rec.Enabled,
		Priority:       rec.Priority,
		TimeoutHours:   rec.TimeoutHours,
		TimeoutOutcome: rec.TimeoutOutcome,
		Steps:          steps,
	}
}
