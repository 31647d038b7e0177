package models

import "time"

// SettingsID is the primary key of the single branding row
const SettingsID = "branding"

var DefaultMenuCategories = []string{"Starters", "Main Course", "Pizza", "Salads", "Desserts", "Drinks"}

type Settings struct {
	ID                  string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	PrimaryColor        string         `json:"primaryColor" gorm:"type:varchar(7);not null"`
	SecondaryColor      string         `json:"secondaryColor" gorm:"type:varchar(7);not null"`
	AccentColor         string         `json:"accentColor" gorm:"type:varchar(7);not null"`
	RestaurantName      string         `json:"restaurantName" gorm:"not null"`
	Logo                *string        `json:"logo"`
	CustomerMenuBaseURL *string        `json:"customerMenuBaseUrl"`
	MenuCategories      StringArray    `json:"menuCategories" gorm:"type:text"`
	CrossSellRules      CrossSellRules `json:"crossSellRules" gorm:"type:text"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

func DefaultSettings() Settings {
	categories := make(StringArray, len(DefaultMenuCategories))
	copy(categories, DefaultMenuCategories)
	return Settings{
		ID:             SettingsID,
		PrimaryColor:   "#1A1A1A",
		SecondaryColor: "#4A4A4A",
		AccentColor:    "#9B9B9B",
		RestaurantName: "Restaurant",
		MenuCategories: categories,
	}
}
