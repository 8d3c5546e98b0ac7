package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/interfaces/http/middleware"
	"investnest.backend/internal/interfaces/http/response"
	"investnest.backend/pkg/utils"
)

// AdminService is the review surface consumed by the handler
type AdminService interface {
	ListUsers(ctx context.Context, status, query string, page, limit int) ([]*entities.User, utils.PaginationMeta, error)
	Review(ctx context.Context, adminID, userID uuid.UUID, input *entities.ReviewInput) (*entities.User, error)
}

// AdminHandler handles the admin review endpoints
type AdminHandler struct {
	svc AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// ListUsers returns a filtered, paginated user listing
// GET /api/admin/users?status=&q=&page=&limit=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	users, meta, err := h.svc.ListUsers(c.Request.Context(), c.Query("status"), c.Query("q"), page, limit)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidInput) {
			response.Error(c, domainerrors.BadRequest("unknown verification status filter"))
			return
		}
		response.Error(c, err)
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, user := range users {
		list = append(list, adminUserJSON(c, user))
	}

	response.Success(c, http.StatusOK, gin.H{
		"users":      list,
		"pagination": meta,
	})
}

// ReviewVerification applies an approve/reject decision to a user's record
// PATCH /api/admin/users/:id/verification-status
func (h *AdminHandler) ReviewVerification(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid user id"))
		return
	}

	var input entities.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.svc.Review(c.Request.Context(), admin.ID, userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrInvalidInput):
			response.Error(c, domainerrors.BadRequest("status must be approved or rejected, with a reason when rejecting"))
		case errors.Is(err, domainerrors.ErrIncomplete):
			response.Error(c, domainerrors.BadRequest("verification record is incomplete, cannot approve"))
		case errors.Is(err, domainerrors.ErrNotFound):
			response.Error(c, domainerrors.NotFound("no verification record for this user"))
		case errors.Is(err, domainerrors.ErrStatusConflict):
			response.Error(c, domainerrors.Conflict("verification is not awaiting review"))
		default:
			response.Error(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "verification status updated",
		"user":    adminUserJSON(c, user),
	})
}

// adminUserJSON projects a user for the admin listing with document paths
// expanded to absolute URLs
func adminUserJSON(c *gin.Context, u *entities.User) gin.H {
	out := gin.H{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"phone":         u.Phone,
		"role":          u.Role,
		"emailVerified": u.EmailVerified,
		"isVerified":    u.IsVerified,
		"createdAt":     u.CreatedAt,
	}

	if u.Verification != nil {
		v := *u.Verification
		v.Documents.IDDocument = absoluteDocumentURL(c, v.Documents.IDDocument)
		v.Documents.PassportPhoto = absoluteDocumentURL(c, v.Documents.PassportPhoto)
		v.Documents.UtilityBill = absoluteDocumentURL(c, v.Documents.UtilityBill)
		out["verification"] = v
	}

	return out
}

// absoluteDocumentURL prefixes relative document paths with the request's
// own scheme and host. Absolute URLs and empty slots pass through unchanged.
func absoluteDocumentURL(c *gin.Context, docPath string) string {
	if docPath == "" || strings.HasPrefix(docPath, "http://") || strings.HasPrefix(docPath, "https://") {
		return docPath
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + docPath
}
