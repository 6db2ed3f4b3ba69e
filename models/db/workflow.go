package dbmodels

import (
	"database/sql/driver"
	"encoding/json"
	"mailpilot-backend/models"
)

type WorkflowDefinition struct {
	BaseSpaceModel
	Name                  string `gorm:"type:varchar(255)"`
	Enabled               bool
	Priority              int
	OwnerUserID           string        `gorm:"type:varchar(36)"`
	OwnerUser             *SpaceUser    `gorm:"foreignKey:OwnerUserID"`
	TriggerConditions     JSONMap       `gorm:"type:jsonb"` // owned by the upstream pipeline, not interpreted here
	ApprovalSteps         StepList      `gorm:"type:jsonb"`
	AutoApproveConditions ConditionList `gorm:"type:jsonb"`
	TimeoutHours          int
	TimeoutOutcome        models.DecisionOutcome `gorm:"type:varchar(50)"` // terminal status policy for swept requests, empty means "timeout"
}

type WorkflowStep struct {
	Type             models.StepType    `json:"type"`
	Recipients       []string           `json:"recipients,omitempty"` // user ids or external addresses, handler-specific
	Checks           []models.CheckType `json:"checks,omitempty"`
	StepTimeoutHours int                `json:"step_timeout_hours,omitempty"`
}

type Condition struct {
	Type      models.ConditionType `json:"type"`
	Threshold float64              `json:"threshold,omitempty"`
	Keywords  []string             `json:"keywords,omitempty"`
}

type StepList []WorkflowStep

func (j StepList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *StepList) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}

type ConditionList []Condition

func (j ConditionList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *ConditionList) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}

// EffectiveSteps returns the configured step chain, or the single implicit
// default approval step for a workflow configured with none
func (w WorkflowDefinition) EffectiveSteps() []WorkflowStep {
	if len(w.ApprovalSteps) == 0 {
		return []WorkflowStep{{Type: models.StepTypeDefaultApproval}}
	}
	return w.ApprovalSteps
}

// RequestTimeoutHours resolves the approval window: the first step's override
// wins over the workflow-level value
func (w WorkflowDefinition) RequestTimeoutHours() int {
	steps := w.EffectiveSteps()
	if steps[0].StepTimeoutHours > 0 {
		return steps[0].StepTimeoutHours
	}
	if w.TimeoutHours > 0 {
		return w.TimeoutHours
	}
	return 24
}

// TimeoutTerminalStatus resolves the per-workflow policy for swept requests
func (w WorkflowDefinition) TimeoutTerminalStatus() models.ApprovalStatus {
	if w.TimeoutOutcome.IsValid() {
		return w.TimeoutOutcome.TerminalStatus()
	}
	return models.ApprovalStatusTimeout
}
