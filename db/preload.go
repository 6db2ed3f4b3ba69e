package db

import (
	"encoding/json"
	"os"

	spacestore "mailpilot-backend/lib/space/store"
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"

	log "github.com/sirupsen/logrus"
)

const workflowSeedPath = "./static_preload/workflows.json"

func InitPreload() {
	fillSpaceSettings()
	seedWorkflows()
}

// fillSpaceSettings adds any missing default settings to every active space
func fillSpaceSettings() {
	spaceIDs, err := getActiveSpaceIds()
	if err != nil {
		log.WithError(err).Error("failed to preload space settings")
		return
	}
	for _, spaceID := range spaceIDs {
		existing := []dbmodels.SpaceSetting{}
		err = DB.
			Where("space_id = ?", spaceID).
			Find(&existing).
			Error
		if err != nil {
			log.WithError(err).WithField("space_id", spaceID).Error("failed to preload space settings")
			continue
		}
		codes := map[models.SpaceSettingCode]bool{}
		for _, setting := range existing {
			codes[setting.Code] = true
		}
		for _, setting := range dbmodels.GetDefaultSettings() {
			if codes[setting.Code] {
				continue
			}
			setting.SpaceID = spaceID
			if err = DB.Save(&setting).Error; err != nil {
				log.WithError(err).WithField("space_id", spaceID).Error("failed to preload space settings")
			}
		}
	}
}

type workflowSeed struct {
	Name                  string                 `json:"name"`
	Priority              int                    `json:"priority"`
	TimeoutHours          int                    `json:"timeout_hours"`
	TimeoutOutcome        string                 `json:"timeout_outcome"`
	ApprovalSteps         dbmodels.StepList      `json:"approval_steps"`
	AutoApproveConditions dbmodels.ConditionList `json:"auto_approve_conditions"`
}

// seedWorkflows installs the bundled workflow set into every active space
// that has no workflows yet
func seedWorkflows() {
	data, err := os.ReadFile(workflowSeedPath)
	if err != nil {
		log.WithError(err).Warn("workflow seed file is not available, skipping")
		return
	}
	seeds := []workflowSeed{}
	if err = json.Unmarshal(data, &seeds); err != nil {
		log.WithError(err).Error("failed to parse the workflow seed file")
		return
	}
	if len(seeds) == 0 {
		return
	}

	spaceIDs, err := getActiveSpaceIds()
	if err != nil {
		log.WithError(err).Error("failed to seed workflows")
		return
	}
	for _, spaceID := range spaceIDs {
		var count int64
		err = DB.
			Model(&dbmodels.WorkflowDefinition{}).
			Where("space_id = ?", spaceID).
			Count(&count).
			Error
		if err != nil {
			log.WithError(err).WithField("space_id", spaceID).Error("failed to seed workflows")
			continue
		}
		if count > 0 {
			continue
		}
		for _, seed := range seeds {
			rec := dbmodels.WorkflowDefinition{
				BaseSpaceModel: dbmodels.BaseSpaceModel{
					SpaceID: spaceID,
				},
				Name:                  seed.Name,
				Enabled:               true,
				Priority:              seed.Priority,
				ApprovalSteps:         seed.ApprovalSteps,
				AutoApproveConditions: seed.AutoApproveConditions,
				TimeoutHours:          seed.TimeoutHours,
				TimeoutOutcome:        models.DecisionOutcome(seed.TimeoutOutcome),
			}
			if err = DB.Save(&rec).Error; err != nil {
				log.WithError(err).WithField("space_id", spaceID).Error("failed to seed workflows")
			}
		}
		log.WithField("space_id", spaceID).Infof("seeded %v workflows", len(seeds))
	}
}

func getActiveSpaceIds() ([]string, error) {
	return spacestore.NewInstance(DB).GetActiveIds()
}
