package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer aggregates visits and spend per email address
type Customer struct {
	ID           string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email        string          `json:"email" gorm:"uniqueIndex;not null"`
	EmailConsent bool            `json:"emailConsent" gorm:"default:false"`
	VisitCount   int             `json:"visitCount" gorm:"not null;default:1"`
	TotalSpent   decimal.Decimal `json:"totalSpent" gorm:"type:decimal(10,2);not null;default:0"`
	LastVisitAt  *time.Time      `json:"lastVisitAt"`
	Orders       []Order         `json:"orders,omitempty" gorm:"foreignKey:CustomerID"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
