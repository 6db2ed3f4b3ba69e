package dbmodels

import (
	"mailpilot-backend/models"
	"time"
)

type ApprovalRequest struct {
	BaseSpaceModel
	WorkflowID       string                `gorm:"type:varchar(36);index"`
	Workflow         *WorkflowDefinition   `gorm:"foreignKey:WorkflowID"`
	ActionPayload    JSONMap               `gorm:"type:jsonb"` // gated action content, opaque to the engine
	Context          JSONMap               `gorm:"type:jsonb"` // classification and customer attributes used by conditions
	Status           models.ApprovalStatus `gorm:"type:varchar(50);index"`
	CurrentStepIndex int
	TimeoutAt        time.Time          `gorm:"index"` // fixed at creation, never extended
	ArchiveObjectKey string             `gorm:"type:varchar(512)"`
	Decisions        []ApprovalDecision `gorm:"foreignKey:RequestID"`
}

type ApprovalDecision struct {
	BaseSpaceModel
	RequestID string `gorm:"type:varchar(36);index"`
	StepIndex int
	Outcome   models.DecisionOutcome `gorm:"type:varchar(50)"`
	ActorID   string                 `gorm:"type:varchar(255)"`
	Comments  string
}
