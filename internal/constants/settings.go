package constants

const (
	SettingTimezone             = "timezone"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingStrictWrites         = "strict_writes"

	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled = true
	DefaultStrictWrites         = false

	DefaultKafkaTopic = "homeagenda-assignments"
)
