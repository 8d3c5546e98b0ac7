package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	domainRepos "investnest.backend/internal/domain/repositories"
	"investnest.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Phone:         user.Phone,
		PasswordHash:  user.PasswordHash,
		Role:          string(user.Role),
		EmailVerified: user.EmailVerified,
		IsVerified:    user.IsVerified,
	}
	if user.EmailVerificationCode.Valid {
		m.EmailVerificationCode = &user.EmailVerificationCode.String
	}
	if user.EmailVerificationExpiry.Valid {
		m.EmailVerificationExpiry = &user.EmailVerificationExpiry.Time
	}
	if user.EmailVerificationLastSentAt.Valid {
		m.EmailVerificationLastSentAt = &user.EmailVerificationLastSentAt.Time
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}

	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a user by ID, including the verification record
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	err := GetDB(ctx, r.db).WithContext(ctx).Preload("Verification").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// GetByEmail gets a user by email (exact, case-sensitive match)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	err := GetDB(ctx, r.db).WithContext(ctx).Preload("Verification").Where("email = ?", email).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// UpdateProfile updates the mutable identity fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"name":       name,
		"phone":      phone,
		"updated_at": time.Now(),
	})
}

// SetRole updates the role field
func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"role":       string(role),
		"updated_at": time.Now(),
	})
}

// SetVerificationCode stores a fresh email verification code
func (r *UserRepository) SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiry, sentAt time.Time) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"email_verification_code":         code,
		"email_verification_expiry":       expiry,
		"email_verification_last_sent_at": sentAt,
		"updated_at":                      time.Now(),
	})
}

// MarkEmailVerified sets the verified flag and clears the ephemeral code fields
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"email_verified":            true,
		"email_verification_code":   nil,
		"email_verification_expiry": nil,
		"updated_at":                time.Now(),
	})
}

// SetVerified updates the is_verified mirror flag
func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"is_verified": verified,
		"updated_at":  time.Now(),
	})
}

// SoftDelete soft deletes a user
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns a page of users filtered by verification status and a
// free-text query, newest first, together with the total match count.
func (r *UserRepository) List(ctx context.Context, filter domainRepos.ListFilter) ([]*entities.User, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	query := db.Model(&models.User{}).
		Joins("LEFT JOIN verifications ON verifications.user_id = users.id AND verifications.deleted_at IS NULL")

	if filter.Status != "" {
		if filter.Status == entities.StatusNotSubmitted {
			// users without a row have never submitted either
			query = query.Where("verifications.status = ? OR verifications.status IS NULL", string(filter.Status))
		} else {
			query = query.Where("verifications.status = ?", string(filter.Status))
		}
	}

	if filter.Query != "" {
		term := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where(
			freeTextSearchSQL(r.db.Dialector.Name()),
			term, term, term, term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var userModels []models.User
	err := query.
		Order("users.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Preload("Verification").
		Find(&userModels).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, userToEntity(&userModels[i]))
	}
	return users, total, nil
}

// freeTextSearchSQL builds the LIKE clause for the admin listing filter.
// The KYC sections are stored as serialized JSON, so the name values are
// extracted with the dialect's JSON operator; matching the raw blob would
// also hit key names and unrelated fields like city or relationship.
func freeTextSearchSQL(dialect string) string {
	// NULLIF guards rows whose section column is an empty string, which is
	// not valid JSON to extract from in either dialect
	firstName := "json_extract(NULLIF(verifications.personal, ''), '$.firstName')"
	lastName := "json_extract(NULLIF(verifications.personal, ''), '$.lastName')"
	kinName := "json_extract(NULLIF(verifications.next_of_kin, ''), '$.fullName')"
	if dialect == "postgres" {
		firstName = "NULLIF(verifications.personal, '')::json ->> 'firstName'"
		lastName = "NULLIF(verifications.personal, '')::json ->> 'lastName'"
		kinName = "NULLIF(verifications.next_of_kin, '')::json ->> 'fullName'"
	}

	return "LOWER(users.email) LIKE ? OR LOWER(users.name) LIKE ? OR LOWER(users.phone) LIKE ?" +
		" OR LOWER(COALESCE(" + firstName + ", '')) LIKE ?" +
		" OR LOWER(COALESCE(" + lastName + ", '')) LIKE ?" +
		" OR LOWER(COALESCE(" + kinName + ", '')) LIKE ?"
}

func (r *UserRepository) updateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func userToEntity(m *models.User) *entities.User {
	u := &entities.User{
		ID:            m.ID,
		Email:         m.Email,
		Name:          m.Name,
		Phone:         m.Phone,
		PasswordHash:  m.PasswordHash,
		Role:          entities.UserRole(m.Role),
		EmailVerified: m.EmailVerified,
		IsVerified:    m.IsVerified,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,

		EmailVerificationCode:       null.StringFromPtr(m.EmailVerificationCode),
		EmailVerificationExpiry:     null.TimeFromPtr(m.EmailVerificationExpiry),
		EmailVerificationLastSentAt: null.TimeFromPtr(m.EmailVerificationLastSentAt),
	}
	if m.Verification != nil {
		u.Verification = verificationToEntity(m.Verification)
	}
	return u
}
