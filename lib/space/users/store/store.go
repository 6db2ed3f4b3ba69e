package spaceusersstore

import (
	dbmodels "mailpilot-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.SpaceUser) (string, error)
	GetByID(userID string) (rec *dbmodels.SpaceUser, err error)
	GetByIDs(spaceID string, userIDs []string) (userList []dbmodels.SpaceUser, err error)
	List(spaceID string) (userList []dbmodels.SpaceUser, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.SpaceUser) (string, error) {
	err := i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(userID string) (rec *dbmodels.SpaceUser, err error) {
	rec = &dbmodels.SpaceUser{}
	err = i.db.
		Where("id = ?", userID).
		First(rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (i impl) GetByIDs(spaceID string, userIDs []string) (userList []dbmodels.SpaceUser, err error) {
	userList = []dbmodels.SpaceUser{}
	if len(userIDs) == 0 {
		return userList, nil
	}
	err = i.db.
		Where("space_id = ?", spaceID).
		Where("id IN ?", userIDs).
		Find(&userList).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return userList, nil
}

func (i impl) List(spaceID string) (userList []dbmodels.SpaceUser, err error) {
	userList = []dbmodels.SpaceUser{}
	err = i.db.
		Where("space_id = ?", spaceID).
		Find(&userList).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return userList, nil
}
