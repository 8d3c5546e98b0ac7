package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/infrastructure/models"
)

// VerificationRepository implements KYC record operations
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// GetByUserID returns the KYC record of a user
func (r *VerificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Verification, error) {
	var m models.Verification
	err := GetDB(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return verificationToEntity(&m), nil
}

// SubmitDetails replaces the text sections wholesale and moves the record to
// pending, clearing any previous review outcome. Creates the row on first
// submission. Document paths are never touched here.
func (r *VerificationRepository) SubmitDetails(ctx context.Context, userID uuid.UUID, input *entities.SubmitVerificationInput, submittedAt time.Time) error {
	personal, err := marshalSection(input.Personal)
	if err != nil {
		return err
	}
	nextOfKin, err := marshalSection(input.NextOfKin)
	if err != nil {
		return err
	}
	bankDetails, err := marshalSection(input.BankDetails)
	if err != nil {
		return err
	}

	db := GetDB(ctx, r.db).WithContext(ctx)

	updates := map[string]interface{}{
		"personal":         personal,
		"next_of_kin":      nextOfKin,
		"bank_details":     bankDetails,
		"status":           string(entities.StatusPending),
		"submitted_at":     submittedAt,
		"rejection_reason": nil,
		"reviewed_at":      nil,
		"reviewed_by":      nil,
		"updated_at":       time.Now(),
	}

	result := db.Model(&models.Verification{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	m := &models.Verification{
		ID:          uuid.New(),
		UserID:      userID,
		Personal:    &personal,
		NextOfKin:   &nextOfKin,
		BankDetails: &bankDetails,
		Status:      string(entities.StatusPending),
		SubmittedAt: &submittedAt,
	}
	return db.Create(m).Error
}

// SetDocuments updates only the supplied document paths; empty slots and the
// status field are left untouched. Creates the row on first upload.
func (r *VerificationRepository) SetDocuments(ctx context.Context, userID uuid.UUID, docs entities.Documents) error {
	db := GetDB(ctx, r.db).WithContext(ctx)

	updates := map[string]interface{}{"updated_at": time.Now()}
	if docs.IDDocument != "" {
		updates["id_document"] = docs.IDDocument
	}
	if docs.PassportPhoto != "" {
		updates["passport_photo"] = docs.PassportPhoto
	}
	if docs.UtilityBill != "" {
		updates["utility_bill"] = docs.UtilityBill
	}

	result := db.Model(&models.Verification{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	m := &models.Verification{
		ID:            uuid.New(),
		UserID:        userID,
		IDDocument:    docs.IDDocument,
		PassportPhoto: docs.PassportPhoto,
		UtilityBill:   docs.UtilityBill,
		Status:        string(entities.StatusNotSubmitted),
	}
	return db.Create(m).Error
}

// Review applies an admin decision as a conditional update keyed on the
// current status still being pending. A concurrent reviewer who lost the
// race gets ErrStatusConflict instead of silently overwriting.
func (r *VerificationRepository) Review(ctx context.Context, userID uuid.UUID, to entities.VerificationStatus, reviewedBy uuid.UUID, reason string, reviewedAt time.Time) error {
	db := GetDB(ctx, r.db).WithContext(ctx)

	updates := map[string]interface{}{
		"status":      string(to),
		"reviewed_at": reviewedAt,
		"reviewed_by": reviewedBy,
		"updated_at":  time.Now(),
	}
	if to == entities.StatusRejected {
		updates["rejection_reason"] = reason
	} else {
		updates["rejection_reason"] = nil
	}

	result := db.Model(&models.Verification{}).
		Where("user_id = ? AND status = ?", userID, string(entities.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Verification{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrStatusConflict
	}
	return nil
}

func marshalSection(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func verificationToEntity(m *models.Verification) *entities.Verification {
	v := &entities.Verification{
		Documents: entities.Documents{
			IDDocument:    m.IDDocument,
			PassportPhoto: m.PassportPhoto,
			UtilityBill:   m.UtilityBill,
		},
		Status:      entities.VerificationStatus(m.Status),
		SubmittedAt: null.TimeFromPtr(m.SubmittedAt),
		ReviewedAt:  null.TimeFromPtr(m.ReviewedAt),
	}
	if m.RejectionReason != nil {
		v.RejectionReason = null.StringFrom(*m.RejectionReason)
	}
	if m.ReviewedBy != nil {
		v.ReviewedBy = null.StringFrom(m.ReviewedBy.String())
	}
	if m.Personal != nil {
		var p entities.PersonalDetails
		if err := json.Unmarshal([]byte(*m.Personal), &p); err == nil {
			v.Personal = &p
		}
	}
	if m.NextOfKin != nil {
		var n entities.NextOfKin
		if err := json.Unmarshal([]byte(*m.NextOfKin), &n); err == nil {
			v.NextOfKin = &n
		}
	}
	if m.BankDetails != nil {
		var b entities.BankDetails
		if err := json.Unmarshal([]byte(*m.BankDetails), &b); err == nil {
			v.BankDetails = &b
		}
	}
	return v
}
