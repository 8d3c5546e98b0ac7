package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
)

type adminFixture struct {
	users  *fakeUserRepo
	verifs *fakeVerificationRepo
	uow    *fakeUnitOfWork
	uc     *AdminUsecase
}

func newAdminFixture() *adminFixture {
	users := newFakeUserRepo()
	verifs := newFakeVerificationRepo()
	uow := &fakeUnitOfWork{}
	return &adminFixture{
		users:  users,
		verifs: verifs,
		uow:    uow,
		uc:     NewAdminUsecase(users, verifs, uow),
	}
}

func (f *adminFixture) seedPendingUser(t *testing.T, complete bool) *entities.User {
	t.Helper()
	u := f.users.add(&entities.User{
		ID:    uuid.New(),
		Email: "ada@mail.com",
		Role:  entities.RoleInvestor,
	})

	v := &entities.Verification{
		Personal:    &entities.PersonalDetails{FirstName: "Ada"},
		NextOfKin:   &entities.NextOfKin{FullName: "Ngozi"},
		BankDetails: &entities.BankDetails{BankName: "First Bank"},
		Status:      entities.StatusPending,
	}
	if complete {
		v.Documents = entities.Documents{
			IDDocument:    "/uploads/id.pdf",
			PassportPhoto: "/uploads/photo.png",
			UtilityBill:   "/uploads/bill.pdf",
		}
	}
	f.verifs.add(u.ID, v)
	return u
}

func TestAdminUsecase_ListUsers(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	f.users.add(&entities.User{ID: uuid.New(), Email: "a@mail.com"})
	f.users.add(&entities.User{ID: uuid.New(), Email: "b@mail.com"})

	users, meta, err := f.uc.ListUsers(ctx, "", "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(2), meta.TotalCount)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 20, meta.Limit, "limit defaults when unset")

	// Every lifecycle status is a valid filter
	for _, status := range []string{"not_submitted", "pending", "approved", "rejected"} {
		_, _, err := f.uc.ListUsers(ctx, status, "", 1, 10)
		assert.NoError(t, err, "status %s", status)
	}

	_, _, err = f.uc.ListUsers(ctx, "bogus", "", 1, 10)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestAdminUsecase_Review_Approve(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	adminID := uuid.New()

	u := f.seedPendingUser(t, true)

	reviewed, err := f.uc.Review(ctx, adminID, u.ID, &entities.ReviewInput{Status: "approved"})
	require.NoError(t, err)
	assert.True(t, reviewed.IsVerified, "is_verified mirror set on approval")

	v, err := f.verifs.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusApproved, v.Status)
	assert.Equal(t, adminID.String(), v.ReviewedBy.String)
	assert.False(t, v.RejectionReason.Valid)
}

func TestAdminUsecase_Review_Reject(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	u := f.seedPendingUser(t, true)

	reviewed, err := f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{
		Status: "rejected", Reason: "documents unreadable",
	})
	require.NoError(t, err)
	assert.False(t, reviewed.IsVerified)

	v, err := f.verifs.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusRejected, v.Status)
	assert.Equal(t, "documents unreadable", v.RejectionReason.String)
}

func TestAdminUsecase_Review_Validation(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	u := f.seedPendingUser(t, true)

	// Only approved/rejected are decisions
	_, err := f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{Status: "pending"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{Status: "not_submitted"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	// A rejection must carry a reason
	_, err = f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{Status: "rejected"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestAdminUsecase_Review_IncompleteRecordCannotBeApproved(t *testing.T) {
	f := newAdminFixture()
	u := f.seedPendingUser(t, false)

	_, err := f.uc.Review(context.Background(), uuid.New(), u.ID, &entities.ReviewInput{Status: "approved"})
	assert.ErrorIs(t, err, domainerrors.ErrIncomplete)

	// Rejection of an incomplete record is fine
	_, err = f.uc.Review(context.Background(), uuid.New(), u.ID, &entities.ReviewInput{
		Status: "rejected", Reason: "missing documents",
	})
	assert.NoError(t, err)
}

func TestAdminUsecase_Review_NoRecord(t *testing.T) {
	f := newAdminFixture()
	u := f.users.add(&entities.User{ID: uuid.New(), Email: "bare@mail.com"})

	_, err := f.uc.Review(context.Background(), uuid.New(), u.ID, &entities.ReviewInput{Status: "approved"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAdminUsecase_Review_ConcurrentDecisionConflicts(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	u := f.seedPendingUser(t, true)

	_, err := f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{Status: "approved"})
	require.NoError(t, err)

	// The record is no longer pending, so a second decision conflicts
	_, err = f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{
		Status: "rejected", Reason: "second opinion",
	})
	assert.ErrorIs(t, err, domainerrors.ErrStatusConflict)
}

func TestAdminUsecase_Review_RejectionClearsMirror(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	u := f.seedPendingUser(t, true)

	// Approve, resubmit, then reject: the mirror must follow
	_, err := f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{Status: "approved"})
	require.NoError(t, err)

	require.NoError(t, f.verifs.SubmitDetails(ctx, u.ID, &entities.SubmitVerificationInput{}, time.Now()))

	reviewed, err := f.uc.Review(ctx, uuid.New(), u.ID, &entities.ReviewInput{
		Status: "rejected", Reason: "stale information",
	})
	require.NoError(t, err)
	assert.False(t, reviewed.IsVerified)
}
