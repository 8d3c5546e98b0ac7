package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"investnest.backend/internal/domain/entities"
	"investnest.backend/internal/domain/repositories"
	"investnest.backend/internal/interfaces/http/response"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/pkg/jwt"
	"investnest.backend/pkg/logger"
)

const (
	// TokenCookie is the session cookie name
	TokenCookie = "token"
	// AuthorizationHeader is the fallback header for the token
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserKey is the gin context key for the resolved user
	UserKey = "currentUser"

	// cookieSentinel overwrites the token cookie on logout
	cookieSentinel = "logged-out"
	// notAuthorized is the single message for every authentication failure,
	// so clients cannot probe which factor failed
	notAuthorized = "not authorized"
)

// CookieConfig controls how the session cookie is written
type CookieConfig struct {
	MaxAge int
	Secure bool
	// SameSite is None in production (cross-site SPA), Lax otherwise
	SameSite http.SameSite
}

// Protect authenticates the request, resolves the user and slides the
// session: a fresh token with a renewed expiry is issued on every success.
func Protect(jwtService *jwt.JWTService, userRepo repositories.UserRepository, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": notAuthorized})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": notAuthorized})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": notAuthorized})
			return
		}

		// Sliding session: renew the absolute expiry and reset the cookie.
		// A signing failure keeps the current token valid, so just log it.
		if fresh, err := jwtService.GenerateToken(user.ID, user.Email, string(user.Role)); err == nil {
			SetTokenCookie(c, fresh, cookies)
		} else {
			logger.Warn(c.Request.Context(), "failed to renew session token", zap.Error(err))
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// Authorize requires the resolved user to hold one of the given roles
func Authorize(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": notAuthorized})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		response.Error(c, domainerrors.Forbidden(fmt.Sprintf(
			"role %q is not allowed to access this resource (requires %s)",
			user.Role, strings.Join(names, " or "),
		)))
		c.Abort()
	}
}

// CurrentUser returns the user resolved by Protect
func CurrentUser(c *gin.Context) (*entities.User, bool) {
	val, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*entities.User)
	return user, ok
}

// SetTokenCookie writes the session cookie
func SetTokenCookie(c *gin.Context, token string, cfg CookieConfig) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(TokenCookie, token, cfg.MaxAge, "/", "", cfg.Secure, true)
}

// ClearTokenCookie overwrites the session cookie with an expired sentinel.
// The signed token itself stays valid until natural expiry (stateless design).
func ClearTokenCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(TokenCookie, cookieSentinel, -1, "/", "", cfg.Secure, true)
}

// tokenFromRequest prefers the cookie, falling back to the bearer header
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" && cookie != cookieSentinel {
		return cookie
	}
	header := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimPrefix(header, BearerPrefix)
	}
	return ""
}
