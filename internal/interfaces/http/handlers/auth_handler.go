package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/domain/guard"
	"investnest.backend/internal/interfaces/http/middleware"
	"investnest.backend/internal/interfaces/http/response"
)

// AuthService is the auth flow consumed by the handler
type AuthService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error)
	VerifyEmail(ctx context.Context, input *entities.VerifyEmailInput) error
	ResendCode(ctx context.Context, email string) (time.Duration, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error)
	ChooseRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	svc     AuthService
	cookies middleware.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, cookies middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{
		svc:     svc,
		cookies: cookies,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			response.Error(c, domainerrors.BadRequest("email already registered"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "registration successful, check your email for the verification code",
		"user":    userJSON(user),
	})
}

// VerifyEmail handles the 6-digit code check
// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var input entities.VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.svc.VerifyEmail(c.Request.Context(), &input); err != nil {
		if errors.Is(err, domainerrors.ErrCodeInvalid) {
			response.Error(c, domainerrors.BadRequest("invalid email or code"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "email verified successfully",
	})
}

// ResendCode issues a fresh verification code
// POST /api/auth/resend-code
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var input entities.ResendCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	remaining, err := h.svc.ResendCode(c.Request.Context(), input.Email)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrAlreadyVerified):
			response.Error(c, domainerrors.BadRequest("email is already verified"))
		case errors.Is(err, domainerrors.ErrCooldownActive):
			seconds := int(math.Ceil(remaining.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			response.Error(c, domainerrors.NewAppError(
				http.StatusTooManyRequests, "TOO_MANY_REQUESTS",
				fmt.Sprintf("please wait %d seconds before requesting another code", seconds),
				domainerrors.ErrCooldownActive,
			))
		default:
			response.Error(c, err)
		}
		return
	}

	// Identical response whether or not the account exists
	response.Success(c, http.StatusOK, gin.H{
		"message": "if the email exists, a new verification code has been sent",
	})
}

// Login authenticates credentials and sets the session cookie
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	auth, err := h.svc.Login(c.Request.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrInvalidCredentials):
			response.Error(c, domainerrors.Unauthorized("invalid email or password"))
		case errors.Is(err, domainerrors.ErrEmailNotVerified):
			response.Error(c, domainerrors.Forbidden("email is not verified"))
		default:
			response.Error(c, err)
		}
		return
	}

	middleware.SetTokenCookie(c, auth.Token, h.cookies)

	response.Success(c, http.StatusOK, gin.H{
		"token":     auth.Token,
		"user":      userJSON(auth.User),
		"nextRoute": guard.NextRoute(auth.User),
	})
}

// GetMe returns the current user projection
// GET /api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":      userJSON(user),
		"nextRoute": guard.NextRoute(user),
	})
}

// Logout clears the session cookie. The token itself stays valid until
// natural expiry; there is no server-side revocation list.
// GET /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.cookies)
	response.Success(c, http.StatusOK, gin.H{
		"message": "logged out",
	})
}

// UpdateProfile updates name and phone
// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	updated, err := h.svc.UpdateProfile(c.Request.Context(), user.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": userJSON(updated),
	})
}

// ChooseRole sets the account profile once
// POST /api/auth/role
func (h *AuthHandler) ChooseRole(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	var input entities.ChooseRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.svc.ChooseRole(c.Request.Context(), user.ID, input.Role); err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrInvalidInput):
			response.Error(c, domainerrors.BadRequest("role must be investor or startup"))
		case errors.Is(err, domainerrors.ErrRoleAlreadySet):
			response.Error(c, domainerrors.BadRequest("profile has already been chosen"))
		default:
			response.Error(c, err)
		}
		return
	}

	updated, err := h.svc.GetUserByID(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":      userJSON(updated),
		"nextRoute": guard.NextRoute(updated),
	})
}

// DeleteMe soft-deletes the caller's account and clears the cookie
// DELETE /api/auth/me
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	if err := h.svc.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		response.Error(c, err)
		return
	}

	middleware.ClearTokenCookie(c, h.cookies)
	response.Success(c, http.StatusOK, gin.H{
		"message": "account deleted",
	})
}

// userJSON is the client-facing user projection. The password hash and the
// ephemeral verification code fields never leave the server.
func userJSON(u *entities.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"phone":         u.Phone,
		"role":          u.Role,
		"emailVerified": u.EmailVerified,
		"isVerified":    u.IsVerified,
	}
}
