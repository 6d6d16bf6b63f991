package models

import (
	"strconv"

	"github.com/elioaoun07/homeagenda/internal/constants"
)

type Settings struct {
	Timezone             string
	NotificationsEnabled bool
	StrictWrites         bool
}

func DefaultSettings() Settings {
	return Settings{
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		StrictWrites:         constants.DefaultStrictWrites,
	}
}

// ToMap flattens settings into the key/value form used by the settings table.
func (s Settings) ToMap() map[string]string {
	return map[string]string{
		constants.SettingTimezone:             s.Timezone,
		constants.SettingNotificationsEnabled: strconv.FormatBool(s.NotificationsEnabled),
		constants.SettingStrictWrites:         strconv.FormatBool(s.StrictWrites),
	}
}

// SettingsFromMap fills missing or malformed keys with defaults.
func SettingsFromMap(values map[string]string) Settings {
	s := DefaultSettings()
	if tz, ok := values[constants.SettingTimezone]; ok && tz != "" {
		s.Timezone = tz
	}
	if v, ok := values[constants.SettingNotificationsEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.NotificationsEnabled = b
		}
	}
	if v, ok := values[constants.SettingStrictWrites]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.StrictWrites = b
		}
	}
	return s
}
