package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"investnest.backend/internal/domain/entities"
	"investnest.backend/internal/interfaces/http/middleware"
	"investnest.backend/internal/usecases"
	"investnest.backend/pkg/logger"
	"investnest.backend/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init("development")
	os.Exit(m.Run())
}

// stubAuthService lets each test script the auth flow with function fields
type stubAuthService struct {
	register      func(ctx context.Context, input *entities.RegisterInput) (*entities.User, error)
	verifyEmail   func(ctx context.Context, input *entities.VerifyEmailInput) error
	resendCode    func(ctx context.Context, email string) (time.Duration, error)
	login         func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	getUserByID   func(ctx context.Context, id uuid.UUID) (*entities.User, error)
	updateProfile func(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error)
	chooseRole    func(ctx context.Context, id uuid.UUID, role entities.UserRole) error
	deleteAccount func(ctx context.Context, id uuid.UUID) error
}

func (s *stubAuthService) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error) {
	return s.register(ctx, input)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, input *entities.VerifyEmailInput) error {
	return s.verifyEmail(ctx, input)
}

func (s *stubAuthService) ResendCode(ctx context.Context, email string) (time.Duration, error) {
	return s.resendCode(ctx, email)
}

func (s *stubAuthService) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.login(ctx, input)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return s.getUserByID(ctx, id)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	return s.updateProfile(ctx, id, input)
}

func (s *stubAuthService) ChooseRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error {
	return s.chooseRole(ctx, id, role)
}

func (s *stubAuthService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return s.deleteAccount(ctx, id)
}

// stubVerificationService scripts the KYC flow
type stubVerificationService struct {
	submit         func(ctx context.Context, userID uuid.UUID, input *entities.SubmitVerificationInput) (*entities.Verification, error)
	storeDocuments func(ctx context.Context, userID uuid.UUID, uploads []usecases.DocumentUpload) (*entities.Verification, error)
	status         func(ctx context.Context, userID uuid.UUID) (entities.VerificationStatus, error)
}

func (s *stubVerificationService) Submit(ctx context.Context, userID uuid.UUID, input *entities.SubmitVerificationInput) (*entities.Verification, error) {
	return s.submit(ctx, userID, input)
}

func (s *stubVerificationService) StoreDocuments(ctx context.Context, userID uuid.UUID, uploads []usecases.DocumentUpload) (*entities.Verification, error) {
	return s.storeDocuments(ctx, userID, uploads)
}

func (s *stubVerificationService) Status(ctx context.Context, userID uuid.UUID) (entities.VerificationStatus, error) {
	return s.status(ctx, userID)
}

// stubAdminService scripts the review surface
type stubAdminService struct {
	listUsers func(ctx context.Context, status, query string, page, limit int) ([]*entities.User, utils.PaginationMeta, error)
	review    func(ctx context.Context, adminID, userID uuid.UUID, input *entities.ReviewInput) (*entities.User, error)
}

func (s *stubAdminService) ListUsers(ctx context.Context, status, query string, page, limit int) ([]*entities.User, utils.PaginationMeta, error) {
	return s.listUsers(ctx, status, query, page, limit)
}

func (s *stubAdminService) Review(ctx context.Context, adminID, userID uuid.UUID, input *entities.ReviewInput) (*entities.User, error) {
	return s.review(ctx, adminID, userID, input)
}

// injectUser plays the role of the auth middleware in tests
func injectUser(user *entities.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserKey, user)
		c.Next()
	}
}

func performJSON(t *testing.T, r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// multipartBody builds a form with one file per given field
func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for field, filename := range files {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("file content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}
