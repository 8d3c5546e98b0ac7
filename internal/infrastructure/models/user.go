package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name          string    `gorm:"type:varchar(100);not null"`
	Phone         string    `gorm:"type:varchar(50)"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"`
	Role          string    `gorm:"type:varchar(20);not null;default:'none'"`
	EmailVerified bool      `gorm:"not null;default:false"`
	IsVerified    bool      `gorm:"not null;default:false"`

	EmailVerificationCode       *string    `gorm:"type:varchar(10)"`
	EmailVerificationExpiry     *time.Time `gorm:"type:timestamp"`
	EmailVerificationLastSentAt *time.Time `gorm:"type:timestamp"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Associations
	Verification *Verification `gorm:"foreignKey:UserID"`
}
