package models

import (
	"testing"

	"github.com/elioaoun07/homeagenda/internal/constants"
)

func TestSettingsFromMap(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   Settings
	}{
		{"empty uses defaults", nil, DefaultSettings()},
		{
			"all keys",
			map[string]string{
				constants.SettingTimezone:             "Asia/Beirut",
				constants.SettingNotificationsEnabled: "false",
				constants.SettingStrictWrites:         "true",
			},
			Settings{Timezone: "Asia/Beirut", NotificationsEnabled: false, StrictWrites: true},
		},
		{
			"malformed bools keep defaults",
			map[string]string{
				constants.SettingNotificationsEnabled: "sometimes",
				constants.SettingStrictWrites:         "",
			},
			DefaultSettings(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SettingsFromMap(tt.values); got != tt.want {
				t.Errorf("SettingsFromMap() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettingsToMap(t *testing.T) {
	s := Settings{Timezone: "UTC", NotificationsEnabled: true, StrictWrites: false}
	if got := SettingsFromMap(s.ToMap()); got != s {
		t.Errorf("SettingsFromMap(ToMap()) = %+v, want %+v", got, s)
	}
}
