package customerhistoryhandler

import (
	"context"
	"mailpilot-backend/db"
	customerhistorystore "mailpilot-backend/lib/customer-history/store"
	dbmodels "mailpilot-backend/models/db"
	"time"
)

type Provider interface {
	IsKnownCustomer(ctx context.Context, spaceID, email string) (bool, error)
	RecordContact(spaceID, email string) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: customerhistorystore.NewInstance(db.DB),
	}
}

func NewInstanceWithStore(store customerhistorystore.Provider) Provider {
	return impl{
		store: store,
	}
}

type impl struct {
	store customerhistorystore.Provider
}

func (i impl) IsKnownCustomer(ctx context.Context, spaceID, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	rec, err := i.store.GetByEmail(spaceID, email)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.ContactCount > 0, nil
}

func (i impl) RecordContact(spaceID, email string) error {
	return i.store.Upsert(dbmodels.CustomerContact{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: spaceID,
		},
		Email:         email,
		ContactCount:  1,
		LastContactAt: time.Now(),
	})
}
