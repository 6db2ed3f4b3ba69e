package approvalstore

import (
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ApprovalRequest) (id string, err error)
	GetByID(spaceID, id string) (rec *dbmodels.ApprovalRequest, err error)
	ListPending(spaceID string, page, limit int) (list []dbmodels.ApprovalRequest, rowCount int64, err error)
	ListExpired(now time.Time, limit int) (list []dbmodels.ApprovalRequest, err error)
	TransitionStatus(spaceID, id string, from []models.ApprovalStatus, updMap map[string]interface{}) (applied bool, err error)
	AdvanceStep(spaceID, id string, fromStepIndex int, updMap map[string]interface{}) (applied bool, err error)
	SetArchiveKey(spaceID, id, objectKey string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ApprovalRequest) (id string, err error) {
	err = i.db.
		Omit("Workflow", "Decisions").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(spaceID, id string) (*dbmodels.ApprovalRequest, error) {
	rec := dbmodels.ApprovalRequest{}
	err := i.db.
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Preload("Workflow").
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

func (i impl) ListPending(spaceID string, page, limit int) (list []dbmodels.ApprovalRequest, rowCount int64, err error) {
	list = []dbmodels.ApprovalRequest{}
	tx := i.db.
		Model(&dbmodels.ApprovalRequest{}).
		Where("space_id = ?", spaceID).
		Where("status IN ?", models.OpenStatuses())
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err = tx.
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Preload("Workflow").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) ListExpired(now time.Time, limit int) (list []dbmodels.ApprovalRequest, err error) {
	list = []dbmodels.ApprovalRequest{}
	err = i.db.
		Where("status IN ?", models.OpenStatuses()).
		Where("timeout_at <= ?", now).
		Order("timeout_at ASC").
		Limit(limit).
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

func (i impl) SetArchiveKey(spaceID, id, objectKey string) error {
	return i.db.
		Model(&dbmodels.ApprovalRequest{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Updates(map[string]interface{}{"ArchiveObjectKey": objectKey}).
		Error
}

// TransitionStatus is the compare-and-swap used by decisions and the timeout
// sweep. The update applies only while the request is still in one of the
// given statuses; applied=false means another transition won the race.
func (i impl) TransitionStatus(spaceID, id string, from []models.ApprovalStatus, updMap map[string]interface{}) (applied bool, err error) {
	if len(updMap) == 0 {
		return false, nil
	}
	tx := i.db.
		Model(&dbmodels.ApprovalRequest{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Where("status IN ?", from).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// AdvanceStep moves currentStepIndex forward by a compare-and-swap on the
// index itself, so the index can only ever increase by one from the value the
// caller observed.
func (i impl) AdvanceStep(spaceID, id string, fromStepIndex int, updMap map[string]interface{}) (applied bool, err error) {
	if len(updMap) == 0 {
		return false, nil
	}
	tx := i.db.
		Model(&dbmodels.ApprovalRequest{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Where("current_step_index = ?", fromStepIndex).
		Where("status IN ?", models.OpenStatuses()).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
