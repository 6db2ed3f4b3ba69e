package workflowstore

import (
	dbmodels "mailpilot-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Add(rec dbmodels.WorkflowDefinition, withID bool) error
	GetByID(spaceID, id string) (rec *dbmodels.WorkflowDefinition, err error)
	List(spaceID string) (list []dbmodels.WorkflowDefinition, err error)
	Update(spaceID, id string, updMap map[string]interface{}) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Add(rec dbmodels.WorkflowDefinition, withID bool) error {
	tx := i.db
	if !withID {
		rec.ID = ""
	}
	err := tx.
		Omit("OwnerUser").
		Save(&rec).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) GetByID(spaceID, id string) (*dbmodels.WorkflowDefinition, error) {
	rec := dbmodels.WorkflowDefinition{}
	err := i.db.
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Preload("OwnerUser").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) List(spaceID string) (list []dbmodels.WorkflowDefinition, err error) {
	list = []dbmodels.WorkflowDefinition{}
	err = i.db.
		Where("space_id = ?", spaceID).
		Order("priority DESC, created_at ASC").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) Update(spaceID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.WorkflowDefinition{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}
