package models

type SpaceSettingCode string

const (
	WorkdayStartSetting  SpaceSettingCode = "WorkdayStart" // business hours window start, HH:MM
	WorkdayEndSetting    SpaceSettingCode = "WorkdayEnd"   // business hours window end, HH:MM
	TimezoneSetting      SpaceSettingCode = "Timezone"
	NotifyWebhookSetting SpaceSettingCode = "NotifyWebhook" // webhook endpoint for approval notifications
	SpaceSenderEmail     SpaceSettingCode = "SpaceSenderEmail" // sender address for approval emails
)
