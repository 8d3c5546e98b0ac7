package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"investnest.backend/internal/domain/entities"
)

// ListFilter narrows the admin user listing
type ListFilter struct {
	// Status filters on the verification status when non-empty
	Status entities.VerificationStatus
	// Query is matched case-insensitively across email, name, phone and
	// the personal/next-of-kin name fields
	Query string
	Page  int
	Limit int
}

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) error
	SetRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error
	// SetVerificationCode stores a fresh code with its expiry and send time
	SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiry, sentAt time.Time) error
	// MarkEmailVerified sets the verified flag and clears the code fields
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*entities.User, int64, error)
}

// VerificationRepository defines KYC record operations
type VerificationRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Verification, error)
	// SubmitDetails replaces the three text sections wholesale, moves the
	// record to pending and clears any previous review outcome. The row is
	// created when absent. Document paths are left untouched.
	SubmitDetails(ctx context.Context, userID uuid.UUID, input *entities.SubmitVerificationInput, submittedAt time.Time) error
	// SetDocuments updates only the document paths; status is untouched
	SetDocuments(ctx context.Context, userID uuid.UUID, docs entities.Documents) error
	// Review transitions pending -> to, recording the reviewer and time.
	// The update is conditional on the current status still being pending;
	// ErrStatusConflict is returned when it no longer is.
	Review(ctx context.Context, userID uuid.UUID, to entities.VerificationStatus, reviewedBy uuid.UUID, reason string, reviewedAt time.Time) error
}
