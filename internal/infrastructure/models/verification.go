package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification stores the KYC record of one user. The three text sections
// are serialized JSON so a resubmission replaces them wholesale.
type Verification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	Personal    *string `gorm:"type:text"`
	NextOfKin   *string `gorm:"type:text"`
	BankDetails *string `gorm:"type:text"`

	IDDocument    string `gorm:"type:varchar(500)"`
	PassportPhoto string `gorm:"type:varchar(500)"`
	UtilityBill   string `gorm:"type:varchar(500)"`

	Status          string     `gorm:"type:varchar(20);not null;default:'not_submitted';index"`
	SubmittedAt     *time.Time `gorm:"type:timestamp"`
	RejectionReason *string    `gorm:"type:text"`
	ReviewedAt      *time.Time `gorm:"type:timestamp"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
