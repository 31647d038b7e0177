package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CallType string

const (
	CallBill     CallType = "bill"
	CallNapkin   CallType = "napkin"
	CallCleaning CallType = "cleaning"
)

type CallStatus string

const (
	CallPending   CallStatus = "pending"
	CallCompleted CallStatus = "completed"
)

// CallRequest is a service ping raised from a table
type CallRequest struct {
	ID           string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	TableID      string     `json:"tableId" gorm:"type:varchar(36);index;not null"`
	TableName    string     `json:"tableName" gorm:"not null"`
	CustomerName string     `json:"customerName" gorm:"not null"`
	Type         CallType   `json:"type" gorm:"type:varchar(20);not null"`
	Status       CallStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ClaimedBy    *string    `json:"claimedBy" gorm:"type:varchar(36)"`
	ClaimedAt    *time.Time `json:"claimedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	CompletedBy  *string    `json:"completedBy" gorm:"type:varchar(36)"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (r *CallRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
