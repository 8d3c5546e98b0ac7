package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/domain/guard"
	"investnest.backend/internal/interfaces/http/middleware"
	"investnest.backend/internal/interfaces/http/response"
	"investnest.backend/internal/usecases"
)

// VerificationService is the KYC flow consumed by the handler
type VerificationService interface {
	Submit(ctx context.Context, userID uuid.UUID, input *entities.SubmitVerificationInput) (*entities.Verification, error)
	StoreDocuments(ctx context.Context, userID uuid.UUID, uploads []usecases.DocumentUpload) (*entities.Verification, error)
	Status(ctx context.Context, userID uuid.UUID) (entities.VerificationStatus, error)
}

// documentSlot describes one required multipart file field and the
// extensions it accepts
type documentSlot struct {
	field       string
	allowedExts []string
}

var documentSlots = []documentSlot{
	{field: usecases.SlotIDDocument, allowedExts: []string{".pdf", ".jpg", ".jpeg", ".png"}},
	{field: usecases.SlotPassportPhoto, allowedExts: []string{".jpg", ".jpeg", ".png"}},
	{field: usecases.SlotUtilityBill, allowedExts: []string{".pdf", ".jpg", ".jpeg", ".png"}},
}

// VerificationHandler handles KYC submission endpoints
type VerificationHandler struct {
	svc         VerificationService
	maxFileSize int64
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(svc VerificationService, maxFileSize int64) *VerificationHandler {
	return &VerificationHandler{
		svc:         svc,
		maxFileSize: maxFileSize,
	}
}

// Submit upserts the KYC text sections and moves the record to pending
// POST /api/verification
func (h *VerificationHandler) Submit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	var input entities.SubmitVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	verification, err := h.svc.Submit(c.Request.Context(), user.ID, &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrStatusConflict) {
			response.Error(c, domainerrors.Conflict("verification is already approved"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":      "verification details submitted",
		"verification": verification,
	})
}

// UploadDocuments stores the three KYC documents
// POST /api/verification/documents
func (h *VerificationHandler) UploadDocuments(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("multipart form with the three document files is required"))
		return
	}

	uploads := make([]usecases.DocumentUpload, 0, len(documentSlots))
	opened := make([]multipart.File, 0, len(documentSlots))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, slot := range documentSlots {
		files := form.File[slot.field]
		if len(files) == 0 {
			response.Error(c, domainerrors.BadRequest(fmt.Sprintf("missing required file %q", slot.field)))
			return
		}

		fh := files[0]
		if err := validateDocument(fh, slot, h.maxFileSize); err != nil {
			response.Error(c, err)
			return
		}

		f, err := fh.Open()
		if err != nil {
			response.Error(c, err)
			return
		}
		opened = append(opened, f)

		uploads = append(uploads, usecases.DocumentUpload{
			Slot:     slot.field,
			Filename: fh.Filename,
			Content:  f,
			Size:     fh.Size,
		})
	}

	verification, err := h.svc.StoreDocuments(c.Request.Context(), user.ID, uploads)
	if err != nil {
		if errors.Is(err, domainerrors.ErrStatusConflict) {
			response.Error(c, domainerrors.Conflict("verification is already approved"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":   "documents uploaded",
		"documents": verification.Documents,
	})
}

// Status reports the review state of the caller's KYC record
// GET /api/verification/status
func (h *VerificationHandler) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authorized"))
		return
	}

	status, err := h.svc.Status(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Recompute the guard input from the fresh status
	snapshot := *user
	snapshot.Verification = &entities.Verification{Status: status}

	response.Success(c, http.StatusOK, gin.H{
		"status":     status,
		"isVerified": user.IsVerified,
		"nextRoute":  guard.NextRoute(&snapshot),
	})
}

func validateDocument(fh *multipart.FileHeader, slot documentSlot, maxSize int64) *domainerrors.AppError {
	if fh.Size > maxSize {
		return domainerrors.BadRequest(fmt.Sprintf(
			"%s exceeds the maximum size of %dMB", slot.field, maxSize>>20))
	}

	ext := strings.ToLower(path.Ext(fh.Filename))
	for _, allowed := range slot.allowedExts {
		if ext == allowed {
			return nil
		}
	}
	return domainerrors.BadRequest(fmt.Sprintf(
		"%s must be one of %s", slot.field, strings.Join(slot.allowedExts, ", ")))
}
