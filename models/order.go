package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of a table order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

// OrderSource tells whether the guest or a staff member entered the order
type OrderSource string

const (
	SourceCustomer OrderSource = "customer"
	SourceManual   OrderSource = "manual"
)

type Order struct {
	ID            string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	TableID       string          `json:"tableId" gorm:"type:varchar(36);index;not null"`
	TableName     string          `json:"tableName" gorm:"not null"`
	CustomerName  string          `json:"customerName" gorm:"not null"`
	CustomerEmail *string         `json:"customerEmail"`
	CustomerID    *string         `json:"customerId" gorm:"type:varchar(36);index"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	QueuePosition *int            `json:"queuePosition"`
	TotalAmount   decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	OrderSource   OrderSource     `json:"orderSource" gorm:"type:varchar(20);not null;default:'customer'"`
	ClaimedBy     *string         `json:"claimedBy" gorm:"type:varchar(36)"`
	ClaimedAt     *time.Time      `json:"claimedAt"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `json:"createdAt"`
	ConfirmedAt   *time.Time      `json:"confirmedAt"`
	ReadyAt       *time.Time      `json:"readyAt"`
	CompletedAt   *time.Time      `json:"completedAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is a snapshot of one cart line; prices are copied at submission time
type OrderItem struct {
	ID             string             `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderID        string             `json:"orderId" gorm:"type:varchar(36);index;not null"`
	MenuItemID     string             `json:"menuItemId" gorm:"type:varchar(36);not null"`
	MenuItemName   string             `json:"menuItemName"`
	Quantity       int                `json:"quantity" gorm:"not null"`
	BasePrice      decimal.Decimal    `json:"basePrice" gorm:"type:decimal(10,2);not null"`
	Customizations ItemCustomizations `json:"customizations" gorm:"type:text"`
	CustomerNotes  *string            `json:"customerNotes"`
	ItemTotal      decimal.Decimal    `json:"itemTotal" gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// ItemCustomization records the options a guest picked for one customization group
type ItemCustomization struct {
	CustomizationID string           `json:"customizationId"`
	Name            string           `json:"name,omitempty"`
	Type            string           `json:"type,omitempty"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
}

type SelectedOption struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
}
