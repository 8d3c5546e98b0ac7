package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/domain/repositories"
	"investnest.backend/pkg/utils"
)

// AdminUsecase handles the admin review surface
type AdminUsecase struct {
	userRepo         repositories.UserRepository
	verificationRepo repositories.VerificationRepository
	uow              repositories.UnitOfWork
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(
	userRepo repositories.UserRepository,
	verificationRepo repositories.VerificationRepository,
	uow repositories.UnitOfWork,
) *AdminUsecase {
	return &AdminUsecase{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		uow:              uow,
	}
}

// ListUsers returns a page of users filtered by status and free-text query
func (u *AdminUsecase) ListUsers(ctx context.Context, status, query string, page, limit int) ([]*entities.User, utils.PaginationMeta, error) {
	var statusFilter entities.VerificationStatus
	if status != "" {
		statusFilter = entities.VerificationStatus(status)
		switch statusFilter {
		case entities.StatusNotSubmitted, entities.StatusPending, entities.StatusApproved, entities.StatusRejected:
		default:
			return nil, utils.PaginationMeta{}, domainerrors.ErrInvalidInput
		}
	}

	params := utils.GetPaginationParams(page, limit)

	users, total, err := u.userRepo.List(ctx, repositories.ListFilter{
		Status: statusFilter,
		Query:  query,
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	return users, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// Review applies an admin decision. The verification row and the user's
// is_verified mirror change atomically inside one transaction; the update
// is conditional on the record still being pending, so a concurrent second
// reviewer gets a conflict instead of overwriting the first decision.
func (u *AdminUsecase) Review(ctx context.Context, adminID, userID uuid.UUID, input *entities.ReviewInput) (*entities.User, error) {
	target := entities.VerificationStatus(input.Status)
	if !entities.ReviewableStatus(target) {
		return nil, domainerrors.ErrInvalidInput
	}
	if target == entities.StatusRejected && input.Reason == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	verification, err := u.verificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	// Approval needs every text section and all three documents in place
	if target == entities.StatusApproved && !verification.Complete() {
		return nil, domainerrors.ErrIncomplete
	}

	now := time.Now()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.verificationRepo.Review(txCtx, userID, target, adminID, input.Reason, now); err != nil {
			return err
		}
		return u.userRepo.SetVerified(txCtx, userID, target == entities.StatusApproved)
	})
	if err != nil {
		return nil, err
	}

	return u.userRepo.GetByID(ctx, userID)
}
