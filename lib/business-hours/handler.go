package businesshourshandler

import (
	"context"
	"mailpilot-backend/db"
	spacesettingsstore "mailpilot-backend/lib/space/settings/store"
	"mailpilot-backend/models"
	"time"

	"github.com/pkg/errors"
)

type Provider interface {
	IsBusinessHours(ctx context.Context, spaceID string, at time.Time) (bool, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		settingsStore: spacesettingsstore.NewInstance(db.DB),
	}
}

func NewInstanceWithStore(settingsStore spacesettingsstore.Provider) Provider {
	return impl{
		settingsStore: settingsStore,
	}
}

type impl struct {
	settingsStore spacesettingsstore.Provider
}

func (i impl) IsBusinessHours(ctx context.Context, spaceID string, at time.Time) (bool, error) {
	tzName, err := i.settingsStore.GetValueByCode(spaceID, models.TimezoneSetting)
	if err != nil {
		return false, errors.Wrap(err, "failed to read the timezone setting")
	}
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return false, errors.Wrapf(err, "unknown timezone %v", tzName)
	}
	local := at.In(loc)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false, nil
	}

	start, err := i.getWindowEdge(spaceID, models.WorkdayStartSetting, "09:00")
	if err != nil {
		return false, err
	}
	end, err := i.getWindowEdge(spaceID, models.WorkdayEndSetting, "18:00")
	if err != nil {
		return false, err
	}

	minutes := local.Hour()*60 + local.Minute()
	return minutes >= start && minutes < end, nil
}

func (i impl) getWindowEdge(spaceID string, code models.SpaceSettingCode, def string) (minutes int, err error) {
	value, err := i.settingsStore.GetValueByCode(spaceID, code)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read setting %v", code)
	}
	if value == "" {
		value = def
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, errors.Wrapf(err, "bad time value in setting %v: %v", code, value)
	}
	return t.Hour()*60 + t.Minute(), nil
}
