package dbmodels

import (
	"mailpilot-backend/models"
)

type SpaceSetting struct {
	BaseModel
	SpaceID string                  `gorm:"type:varchar(36);index:idx_setting_code"`
	Name    string                  `gorm:"type:varchar(255)"`
	Code    models.SpaceSettingCode `gorm:"type:varchar(255);index:idx_setting_code"`
	Value   string                  `gorm:"type:varchar(500)"`
}

var DefaultWorkdayStartSetting = SpaceSetting{
	SpaceID: "",
	Name:    "Business hours, start of the workday (HH:MM)",
	Code:    models.WorkdayStartSetting,
	Value:   "09:00",
}

var DefaultWorkdayEndSetting = SpaceSetting{
	SpaceID: "",
	Name:    "Business hours, end of the workday (HH:MM)",
	Code:    models.WorkdayEndSetting,
	Value:   "18:00",
}

var DefaultTimezoneSetting = SpaceSetting{
	SpaceID: "",
	Name:    "IANA timezone for business hours",
	Code:    models.TimezoneSetting,
	Value:   "UTC",
}

var DefaultNotifyWebhookSetting = SpaceSetting{
	SpaceID: "",
	Name:    "Webhook URL for approval notifications",
	Code:    models.NotifyWebhookSetting,
	Value:   "",
}

var DefaultSenderEmailSetting = SpaceSetting{
	SpaceID: "",
	Name:    "Sender address for approval emails",
	Code:    models.SpaceSenderEmail,
	Value:   "",
}

func GetDefaultSettings() []SpaceSetting {
	return []SpaceSetting{
		DefaultWorkdayStartSetting,
		DefaultWorkdayEndSetting,
		DefaultTimezoneSetting,
		DefaultNotifyWebhookSetting,
		DefaultSenderEmailSetting,
	}
}
