package spaceusershander

import (
	"mailpilot-backend/db"
	spaceusersstore "mailpilot-backend/lib/space/users/store"
	spaceapimodels "mailpilot-backend/models/api/space"

	"github.com/pkg/errors"
)

type Provider interface {
	GetByID(userID string) (user spaceapimodels.SpaceUserView, err error)
	GetListUsers(spaceID string) (usersList []spaceapimodels.SpaceUserView, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: spaceusersstore.NewInstance(db.DB),
	}
}

type impl struct {
	store spaceusersstore.Provider
}

func (i impl) GetByID(userID string) (spaceapimodels.SpaceUserView, error) {
	rec, err := i.store.GetByID(userID)
	if err != nil {
		return spaceapimodels.SpaceUserView{}, err
	}
	if rec == nil {
		return spaceapimodels.SpaceUserView{}, errors.New("user not found")
	}
	return spaceapimodels.SpaceUserConvert(*rec), nil
}

func (i impl) GetListUsers(spaceID string) (usersList []spaceapimodels.SpaceUserView, err error) {
	list, err := i.store.List(spaceID)
	if err != nil {
		return nil, err
	}
	usersList = make([]spaceapimodels.SpaceUserView, 0, len(list))
	for _, rec := range list {
		usersList = append(usersList, spaceapimodels.SpaceUserConvert(rec))
	}
	return usersList, nil
}
