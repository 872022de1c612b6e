package domain

import "time"

const CollectionSettings = "settings"

// Settings is the single site-wide settings record.
type Settings struct {
	Meta
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	WorkingHours string `json:"workingHours"`

	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	Linkedin  string `json:"linkedin"`
	Whatsapp  string `json:"whatsapp"`

	StatsYears     string `json:"statsYears"`
	StatsProjects  string `json:"statsProjects"`
	StatsAwards    string `json:"statsAwards"`
	StatsEngineers string `json:"statsEngineers"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func DefaultSettings(now time.Time) Settings {
	return Settings{
		Address:        "الرياض، المملكة العربية السعودية",
		Phone:          "+966 11 234 5678",
		Email:          "info@contracting-co.com",
		WorkingHours:   "الأحد - الخميس: 8:00 ص - 5:00 م",
		StatsYears:     "+15",
		StatsProjects:  "+500",
		StatsAwards:    "+50",
		StatsEngineers: "+120",
		UpdatedAt:      now,
	}
}

// SettingsUpdate uses pointers so an explicit empty string clears a field.
type SettingsUpdate struct {
	Address      *string `json:"address,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	WorkingHours *string `json:"workingHours,omitempty"`

	Facebook  *string `json:"facebook,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
	Linkedin  *string `json:"linkedin,omitempty"`
	Whatsapp  *string `json:"whatsapp,omitempty"`

	StatsYears     *string `json:"statsYears,omitempty"`
	StatsProjects  *string `json:"statsProjects,omitempty"`
	StatsAwards    *string `json:"statsAwards,omitempty"`
	StatsEngineers *string `json:"statsEngineers,omitempty"`
}
