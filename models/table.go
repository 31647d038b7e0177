package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

type Table struct {
	ID               string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name             string      `json:"name" gorm:"uniqueIndex;not null"`
	QRCodeURL        string      `json:"qrCodeUrl"`
	Status           TableStatus `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	OccupiedSince    *time.Time  `json:"occupiedSince"`
	CurrentOccupants Occupants   `json:"currentOccupants" gorm:"type:text"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Occupant is a named party seated at a table
type Occupant struct {
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}
