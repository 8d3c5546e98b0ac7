package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserRole represents the account role. RoleNone is the explicit unset
// state for accounts that have not chosen a profile yet.
type UserRole string

const (
	RoleNone     UserRole = "none"
	RoleInvestor UserRole = "investor"
	RoleStartup  UserRole = "startup"
	RoleAdmin    UserRole = "admin"
)

// Selectable reports whether a role may be chosen by the user itself
func (r UserRole) Selectable() bool {
	return r == RoleInvestor || r == RoleStartup
}

// User represents a platform account
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	PasswordHash  string    `json:"-"`
	Role          UserRole  `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	// IsVerified mirrors verification approval for client convenience;
	// it is true iff Verification.Status is approved
	IsVerified bool `json:"isVerified"`

	EmailVerificationCode       null.String `json:"-"`
	EmailVerificationExpiry     null.Time   `json:"-"`
	EmailVerificationLastSentAt null.Time   `json:"-"`

	Verification *Verification `json:"verification,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterInput represents input for registration
type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailInput represents input for the email code check
type VerifyEmailInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// ResendCodeInput represents input for requesting a new code
type ResendCodeInput struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateProfileInput represents input for a profile update
type UpdateProfileInput struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Phone string `json:"phone" binding:"required"`
}

// ChooseRoleInput represents input for the one-time role selection
type ChooseRoleInput struct {
	Role UserRole `json:"role" binding:"required"`
}

// AuthResponse represents a login result
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
