package spacesettingshandler

import (
	"mailpilot-backend/db"
	spacesettingsstore "mailpilot-backend/lib/space/settings/store"
	spaceapimodels "mailpilot-backend/models/api/space"

	log "github.com/sirupsen/logrus"
)

type Provider interface {
	UpdateSettingValue(spaceID, settingCode, settingValue string) error
	GetList(spaceID string) (settingsList []spaceapimodels.SpaceSettingView, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		spaceSettingsStore: spacesettingsstore.NewInstance(db.DB),
	}
}

type impl struct {
	spaceSettingsStore spacesettingsstore.Provider
}

func (i impl) UpdateSettingValue(spaceID, settingCode, settingValue string) error {
	err := i.spaceSettingsStore.Update(spaceID, settingCode, settingValue)
	if err != nil {
		log.WithFields(log.Fields{
			"space_id":      spaceID,
			"setting_code":  settingCode,
			"setting_value": settingValue,
		}).
			WithError(err).
			Error("failed to update the space setting")
		return err
	}
	return nil
}

func (i impl) GetList(spaceID string) (settingsList []spaceapimodels.SpaceSettingView, err error) {
	list, err := i.spaceSettingsStore.List(spaceID)
	if err != nil {
		log.
			WithField("space_id", spaceID).
			WithError(err).
			Error("failed to list space settings")
		return nil, err
	}
	for _, setting := range list {
		settingsList = append(settingsList, spaceapimodels.SpaceSettingView{
			ID:      setting.ID,
			SpaceID: setting.SpaceID,
			Name:    setting.Name,
			Code:    setting.Code,
			Value:   setting.Value,
		})
	}
	return settingsList, nil
}
