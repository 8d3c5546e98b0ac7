package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/domain/repositories"
	"investnest.backend/internal/infrastructure/mail"
	"investnest.backend/pkg/crypto"
	"investnest.backend/pkg/jwt"
	"investnest.backend/pkg/logger"
)

// CooldownStore rate-limits verification code resends per email
type CooldownStore interface {
	Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration, error)
}

// AuthUsecase handles registration, email verification and sessions
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	jwtService *jwt.JWTService
	mailer     mail.Mailer
	cooldown   CooldownStore

	codeTTL        time.Duration
	resendCooldown time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	jwtService *jwt.JWTService,
	mailer mail.Mailer,
	cooldown CooldownStore,
	codeTTL time.Duration,
	resendCooldown time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:       userRepo,
		jwtService:     jwtService,
		mailer:         mailer,
		cooldown:       cooldown,
		codeTTL:        codeTTL,
		resendCooldown: resendCooldown,
	}
}

// Register creates an unverified account and issues the first email code
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error) {
	_, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: passwordHash,
		Role:         entities.RoleNone,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := u.issueCode(ctx, user); err != nil {
		return nil, err
	}

	// Open the cooldown window so an immediate resend is throttled
	if u.cooldown != nil {
		if _, _, err := u.cooldown.Acquire(ctx, user.Email, u.resendCooldown); err != nil {
			logger.Warn(ctx, "failed to open resend cooldown window", zap.Error(err))
		}
	}

	return user, nil
}

// VerifyEmail validates a submitted code. A missing user and a wrong code
// produce the same error so accounts cannot be enumerated. Verifying an
// already-verified account is a no-op.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, input *entities.VerifyEmailInput) error {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrCodeInvalid
		}
		return err
	}

	if user.EmailVerified {
		return nil
	}

	if !user.EmailVerificationCode.Valid || !user.EmailVerificationExpiry.Valid {
		return domainerrors.ErrCodeInvalid
	}
	if time.Now().After(user.EmailVerificationExpiry.Time) {
		return domainerrors.ErrCodeInvalid
	}
	if user.EmailVerificationCode.String != input.Code {
		return domainerrors.ErrCodeInvalid
	}

	return u.userRepo.MarkEmailVerified(ctx, user.ID)
}

// ResendCode issues a fresh code subject to the cooldown window. A missing
// account returns success without side effects (enumeration resistance); an
// already verified one returns an explicit error — intentional asymmetry.
func (u *AuthUsecase) ResendCode(ctx context.Context, email string) (time.Duration, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if user.EmailVerified {
		return 0, domainerrors.ErrAlreadyVerified
	}

	if remaining, err := u.checkCooldown(ctx, user); err != nil {
		return remaining, err
	}

	return 0, u.issueCode(ctx, user)
}

// Login authenticates credentials and issues a session token. Unverified
// email is reported distinctly (403) from bad credentials (401).
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, domainerrors.ErrEmailNotVerified
	}

	token, err := u.jwtService.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &entities.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

// UpdateProfile updates name and phone
func (u *AuthUsecase) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	if err := u.userRepo.UpdateProfile(ctx, id, input.Name, input.Phone); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, id)
}

// ChooseRole sets the account profile once. Only investor and startup are
// selectable, and only while the role is still unset.
func (u *AuthUsecase) ChooseRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error {
	if !role.Selectable() {
		return domainerrors.ErrInvalidInput
	}

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != entities.RoleNone && user.Role != role {
		return domainerrors.ErrRoleAlreadySet
	}

	return u.userRepo.SetRole(ctx, id, role)
}

// DeleteAccount soft-deletes the caller's account
func (u *AuthUsecase) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return u.userRepo.SoftDelete(ctx, id)
}

// issueCode stores a fresh code and triggers the mail send. A delivery
// failure is logged only; the stored code stays valid and registration
// must not fail because a third-party relay is down.
func (u *AuthUsecase) issueCode(ctx context.Context, user *entities.User) error {
	code, err := crypto.GenerateVerificationCode()
	if err != nil {
		return err
	}

	now := time.Now()
	if err := u.userRepo.SetVerificationCode(ctx, user.ID, code, now.Add(u.codeTTL), now); err != nil {
		return err
	}
	user.EmailVerificationCode = null.StringFrom(code)
	user.EmailVerificationExpiry = null.TimeFrom(now.Add(u.codeTTL))
	user.EmailVerificationLastSentAt = null.TimeFrom(now)

	if err := u.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		logger.Error(ctx, "failed to send verification code", zap.Error(err))
	}

	return nil
}

// checkCooldown consults redis first and falls back to the persisted
// last-sent timestamp when redis is unavailable
func (u *AuthUsecase) checkCooldown(ctx context.Context, user *entities.User) (time.Duration, error) {
	if u.cooldown != nil {
		ok, remaining, err := u.cooldown.Acquire(ctx, user.Email, u.resendCooldown)
		if err == nil {
			if !ok {
				return remaining, domainerrors.ErrCooldownActive
			}
			return 0, nil
		}
		logger.Warn(ctx, "cooldown store unavailable, using last-sent timestamp", zap.Error(err))
	}

	if user.EmailVerificationLastSentAt.Valid {
		elapsed := time.Since(user.EmailVerificationLastSentAt.Time)
		if elapsed < u.resendCooldown {
			return u.resendCooldown - elapsed, domainerrors.ErrCooldownActive
		}
	}
	return 0, nil
}
