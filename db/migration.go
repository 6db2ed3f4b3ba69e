package db

import (
	dbmodels "mailpilot-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("running migrations")
	if err := DB.AutoMigrate(&dbmodels.Space{}); err != nil {
		return errors.Wrap(err, "failed to migrate Space")
	}
	if err := DB.AutoMigrate(&dbmodels.SpaceUser{}); err != nil {
		return errors.Wrap(err, "failed to migrate SpaceUser")
	}
	if err := DB.AutoMigrate(&dbmodels.SpaceSetting{}); err != nil {
		return errors.Wrap(err, "failed to migrate SpaceSetting")
	}
	if err := DB.AutoMigrate(&dbmodels.CustomerContact{}); err != nil {
		return errors.Wrap(err, "failed to migrate CustomerContact")
	}
	if err := DB.AutoMigrate(&dbmodels.WorkflowDefinition{}); err != nil {
		return errors.Wrap(err, "failed to migrate WorkflowDefinition")
	}
	if err := DB.AutoMigrate(&dbmodels.ApprovalRequest{}); err != nil {
		return errors.Wrap(err, "failed to migrate ApprovalRequest")
	}
	if err := DB.AutoMigrate(&dbmodels.ApprovalDecision{}); err != nil {
		return errors.Wrap(err, "failed to migrate ApprovalDecision")
	}
	log.Info("migrations finished")
	return nil
}
