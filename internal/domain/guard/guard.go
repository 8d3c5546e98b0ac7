// Package guard computes the client landing route from the composite
// authentication/role/KYC state. It mirrors the SPA route guards; the
// authoritative enforcement stays in the HTTP middleware.
package guard

import (
	"investnest.backend/internal/domain/entities"
)

// Route destinations, matching the SPA route table
const (
	RouteLogin               = "/login"
	RouteChooseProfile       = "/choose-profile"
	RouteVerification        = "/verification"
	RouteVerificationPending = "/verification/pending"
	RouteDashboard           = "/dashboard"
	RouteAdminUsers          = "/admin/users"
)

// EffectiveStatus derives the review state a guard should act on.
// When no verification record exists the IsVerified mirror decides
// between approved and not submitted.
func EffectiveStatus(u *entities.User) entities.VerificationStatus {
	if u.Verification != nil && u.Verification.Status != "" {
		return u.Verification.Status
	}
	if u.IsVerified {
		return entities.StatusApproved
	}
	return entities.StatusNotSubmitted
}

// NextRoute decides where an authenticated user belongs. Unauthenticated
// callers (nil user) are sent to login.
func NextRoute(u *entities.User) string {
	if u == nil {
		return RouteLogin
	}

	switch u.Role {
	case entities.RoleAdmin:
		return RouteAdminUsers
	case entities.RoleNone:
		return RouteChooseProfile
	case entities.RoleInvestor, entities.RoleStartup:
		// fall through to the KYC decision below
	default:
		return RouteChooseProfile
	}

	switch EffectiveStatus(u) {
	case entities.StatusApproved:
		return RouteDashboard
	case entities.StatusPending:
		return RouteVerificationPending
	case entities.StatusRejected, entities.StatusNotSubmitted:
		return RouteVerification
	default:
		return RouteVerification
	}
}
