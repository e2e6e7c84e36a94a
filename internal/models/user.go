package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the platform user model. Accounts are created through email/password
// registration or provisioned by the Clerk sync webhook.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Username     string         `gorm:"size:100;index" json:"username"`
	Password     string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"size:20;default:'user'" json:"role"`
	ClerkUserID  *string        `gorm:"size:255;index" json:"-"`
	AuthProvider string         `gorm:"size:50;default:'email'" json:"-"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	AlertsOptIn  bool           `gorm:"default:true" json:"alerts_opt_in"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
