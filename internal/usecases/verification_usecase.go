package usecases

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/domain/repositories"
	"investnest.backend/internal/infrastructure/storage"
	"investnest.backend/pkg/logger"
)

// DocumentUpload carries one validated file from the multipart boundary
type DocumentUpload struct {
	Slot     string // one of the entities.Documents field names
	Filename string
	Content  io.Reader
	Size     int64
}

// Document slot names, matching the multipart field names
const (
	SlotIDDocument    = "identificationDocument"
	SlotPassportPhoto = "passportPhoto"
	SlotUtilityBill   = "utilityBill"
)

// VerificationUsecase handles KYC submissions
type VerificationUsecase struct {
	verificationRepo repositories.VerificationRepository
	store            storage.Store
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(verificationRepo repositories.VerificationRepository, store storage.Store) *VerificationUsecase {
	return &VerificationUsecase{
		verificationRepo: verificationRepo,
		store:            store,
	}
}

// Submit replaces the text sections wholesale and moves the record to
// pending. An approved record cannot be resubmitted; a rejected one is
// reset to pending with its rejection reason cleared.
func (u *VerificationUsecase) Submit(ctx context.Context, userID uuid.UUID, input *entities.SubmitVerificationInput) (*entities.Verification, error) {
	current, err := u.verificationRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if current != nil && current.Status == entities.StatusApproved {
		return nil, domainerrors.ErrStatusConflict
	}

	if err := u.verificationRepo.SubmitDetails(ctx, userID, input, time.Now()); err != nil {
		return nil, err
	}

	return u.verificationRepo.GetByUserID(ctx, userID)
}

// StoreDocuments persists the three uploaded documents and records their
// web paths. On any failure every file already written in this request is
// removed again, so a partial upload leaves no orphans behind.
func (u *VerificationUsecase) StoreDocuments(ctx context.Context, userID uuid.UUID, uploads []DocumentUpload) (*entities.Verification, error) {
	current, err := u.verificationRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if current != nil && current.Status == entities.StatusApproved {
		return nil, domainerrors.ErrStatusConflict
	}

	var docs entities.Documents
	var saved []string

	cleanup := func() {
		for _, webPath := range saved {
			if err := u.store.Remove(ctx, webPath); err != nil {
				logger.Warn(ctx, "failed to clean up uploaded document",
					zap.String("path", webPath), zap.Error(err))
			}
		}
	}

	for _, up := range uploads {
		webPath, err := u.store.Save(ctx, up.Filename, up.Content, up.Size)
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, webPath)

		switch up.Slot {
		case SlotIDDocument:
			docs.IDDocument = webPath
		case SlotPassportPhoto:
			docs.PassportPhoto = webPath
		case SlotUtilityBill:
			docs.UtilityBill = webPath
		default:
			cleanup()
			return nil, domainerrors.ErrInvalidInput
		}
	}

	if err := u.verificationRepo.SetDocuments(ctx, userID, docs); err != nil {
		cleanup()
		return nil, err
	}

	return u.verificationRepo.GetByUserID(ctx, userID)
}

// Status returns the review state of a user's KYC record. A user without a
// record has simply not submitted yet.
func (u *VerificationUsecase) Status(ctx context.Context, userID uuid.UUID) (entities.VerificationStatus, error) {
	v, err := u.verificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.StatusNotSubmitted, nil
		}
		return "", err
	}
	return v.Status, nil
}
