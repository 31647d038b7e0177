package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID                      string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name                    string           `json:"name" gorm:"not null"`
	NameTranslations        Translations     `json:"nameTranslations" gorm:"type:text"`
	Description             string           `json:"description"`
	DescriptionTranslations Translations     `json:"descriptionTranslations" gorm:"type:text"`
	Price                   decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	Category                string           `json:"category" gorm:"index;not null"`
	ImageURL                *string          `json:"imageUrl"`
	IsPopular               bool             `json:"isPopular" gorm:"default:false"`
	PopularRank             *int             `json:"popularRank"`
	DisplayOrder            *int             `json:"displayOrder"`
	IsActive                bool             `json:"isActive" gorm:"default:true"`
	NutritionalInfo         *NutritionalInfo `json:"nutritionalInfo" gorm:"type:text"`
	Allergens               StringArray      `json:"allergens" gorm:"type:text"`
	Customizations          []Customization  `json:"customizations,omitempty" gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type NutritionalInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Customization is an option group offered on a menu item (size, extras, ...)
type Customization struct {
	ID            string               `json:"id" gorm:"type:varchar(36);primaryKey"`
	MenuItemID    string               `json:"menuItemId" gorm:"type:varchar(36);index;not null"`
	Type          string               `json:"type" gorm:"not null"`
	Name          string               `json:"name" gorm:"not null"`
	Options       CustomizationOptions `json:"options" gorm:"type:text"`
	AllowMultiple bool                 `json:"allowMultiple"`
	Required      bool                 `json:"required"`
}

func (c *Customization) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CustomizationOption struct {
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	IsDefault bool            `json:"isDefault"`
}
