package approvaldecisionstore

import (
	dbmodels "mailpilot-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ApprovalDecision) (id string, err error)
	List(spaceID, requestID string) (list []dbmodels.ApprovalDecision, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ApprovalDecision) (id string, err error) {
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(spaceID, requestID string) (list []dbmodels.ApprovalDecision, err error) {
	list = []dbmodels.ApprovalDecision{}
	err = i.db.
		Where("space_id = ?", spaceID).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
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
