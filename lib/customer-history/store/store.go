package customerhistorystore

import (
	dbmodels "mailpilot-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	GetByEmail(spaceID, email string) (rec *dbmodels.CustomerContact, err error)
	Upsert(rec dbmodels.CustomerContact) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByEmail(spaceID, email string) (*dbmodels.CustomerContact, error) {
	rec := dbmodels.CustomerContact{}
	err := i.db.
		Where("space_id = ?", spaceID).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
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

func (i impl) Upsert(rec dbmodels.CustomerContact) error {
	rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
	current, err := i.GetByEmail(rec.SpaceID, rec.Email)
	if err != nil {
		return err
	}
	if current != nil {
		updMap := map[string]interface{}{
			"ContactCount":  current.ContactCount + 1,
			"LastContactAt": rec.LastContactAt,
		}
		return i.db.
			Model(&dbmodels.CustomerContact{}).
			Where("id = ?", current.ID).
			Updates(updMap).
			Error
	}
	return i.db.
		Save(&rec).
		Error
}
