package spacestore

import (
	dbmodels "mailpilot-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	CreateSpace(rec dbmodels.Space) (spaceID string, err error)
	UpdateSpace(spaceID string, updMap map[string]interface{}) error
	GetActiveIds() ([]string, error)
	GetByID(spaceID string) (rec *dbmodels.Space, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) CreateSpace(rec dbmodels.Space) (string, error) {
	err := i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) UpdateSpace(spaceID string, updMap map[string]interface{}) error {
	err := i.db.
		Model(&dbmodels.Space{}).
		Where("id = ?", spaceID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) GetActiveIds() ([]string, error) {
	ids := []string{}
	err := i.db.
		Model(&dbmodels.Space{}).
		Where("is_active = true").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (i impl) GetByID(spaceID string) (*dbmodels.Space, error) {
	rec := dbmodels.Space{}
	err := i.db.
		Where("id = ?", spaceID).
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
