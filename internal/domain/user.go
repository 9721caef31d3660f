package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirstName       string    `json:"firstName" gorm:"not null"`
	LastName        string    `json:"lastName" gorm:"not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	PhoneNumber     string    `json:"phoneNumber"`
	ImpairmentLevel string    `json:"impairmentLevel"`
	PasswordHash    string    `json:"-" gorm:"not null"`

	// Guardian-entered details for the cane holder.
	BlindFullName string `json:"blindFullName"`
	BlindAge      int    `json:"blindAge"`

	Verified         bool   `json:"verified" gorm:"not null;default:false"`
	VerificationCode string `json:"-"`

	// Single-slot password reset token: a new request overwrites any prior one.
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	// Mirror of the session store's current refresh token digest. The session
	// store is authoritative on disagreement.
	RefreshTokenHash string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
