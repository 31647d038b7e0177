package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole defines the staff roles known to the system
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleWaiter UserRole = "waiter"
	RoleChef   UserRole = "chef"
)

type User struct {
	ID          string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email       string      `json:"email" gorm:"uniqueIndex;not null"`
	Password    string      `json:"-" gorm:"not null"`
	Role        UserRole    `json:"role" gorm:"type:varchar(20);not null"`
	IsOnline    bool        `json:"isOnline" gorm:"default:false"`
	Permissions StringArray `json:"permissions" gorm:"type:text"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return strings.EqualFold(string(u.Role), string(RoleAdmin))
}

func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if strings.EqualFold(string(u.Role), string(r)) {
			return true
		}
	}
	return false
}

// Can answers the access-control question for one operation: admins may do
// everything, otherwise a matching role or an explicit permission is required.
func (u *User) Can(permission string, roles ...UserRole) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() || u.HasRole(roles...) {
		return true
	}
	return permission != "" && u.Permissions.Contains(permission)
}
