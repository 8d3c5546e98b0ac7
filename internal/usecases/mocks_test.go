package usecases

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"investnest.backend/internal/domain/entities"
	domainerrors "investnest.backend/internal/domain/errors"
	"investnest.backend/internal/domain/repositories"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User

	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entities.User{}}
}

func (r *fakeUserRepo) add(u *entities.User) *entities.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domainerrors.ErrAlreadyExists
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, name, phone string) error {
	return r.update(id, func(u *entities.User) {
		u.Name = name
		u.Phone = phone
	})
}

func (r *fakeUserRepo) SetRole(_ context.Context, id uuid.UUID, role entities.UserRole) error {
	return r.update(id, func(u *entities.User) { u.Role = role })
}

func (r *fakeUserRepo) SetVerificationCode(_ context.Context, id uuid.UUID, code string, expiry, sentAt time.Time) error {
	return r.update(id, func(u *entities.User) {
		u.EmailVerificationCode.SetValid(code)
		u.EmailVerificationExpiry.SetValid(expiry)
		u.EmailVerificationLastSentAt.SetValid(sentAt)
	})
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *entities.User) {
		u.EmailVerified = true
		u.EmailVerificationCode.Valid = false
		u.EmailVerificationExpiry.Valid = false
	})
}

func (r *fakeUserRepo) SetVerified(_ context.Context, id uuid.UUID, verified bool) error {
	return r.update(id, func(u *entities.User) { u.IsVerified = verified })
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ repositories.ListFilter) ([]*entities.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) update(id uuid.UUID, fn func(*entities.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	fn(u)
	return nil
}

// fakeVerificationRepo is an in-memory VerificationRepository
type fakeVerificationRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entities.Verification

	submitErr  error
	setDocsErr error
	reviewErr  error
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{records: map[uuid.UUID]*entities.Verification{}}
}

func (r *fakeVerificationRepo) add(userID uuid.UUID, v *entities.Verification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.records[userID] = &cp
}

func (r *fakeVerificationRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*entities.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[userID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVerificationRepo) SubmitDetails(_ context.Context, userID uuid.UUID, input *entities.SubmitVerificationInput, submittedAt time.Time) error {
	if r.submitErr != nil {
		return r.submitErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[userID]
	if !ok {
		v = &entities.Verification{}
		r.records[userID] = v
	}
	personal, nextOfKin, bankDetails := input.Personal, input.NextOfKin, input.BankDetails
	v.Personal = &personal
	v.NextOfKin = &nextOfKin
	v.BankDetails = &bankDetails
	v.Status = entities.StatusPending
	v.SubmittedAt.SetValid(submittedAt)
	v.RejectionReason.Valid = false
	v.ReviewedAt.Valid = false
	v.ReviewedBy.Valid = false
	return nil
}

func (r *fakeVerificationRepo) SetDocuments(_ context.Context, userID uuid.UUID, docs entities.Documents) error {
	if r.setDocsErr != nil {
		return r.setDocsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[userID]
	if !ok {
		v = &entities.Verification{Status: entities.StatusNotSubmitted}
		r.records[userID] = v
	}
	if docs.IDDocument != "" {
		v.Documents.IDDocument = docs.IDDocument
	}
	if docs.PassportPhoto != "" {
		v.Documents.PassportPhoto = docs.PassportPhoto
	}
	if docs.UtilityBill != "" {
		v.Documents.UtilityBill = docs.UtilityBill
	}
	return nil
}

func (r *fakeVerificationRepo) Review(_ context.Context, userID uuid.UUID, to entities.VerificationStatus, reviewedBy uuid.UUID, reason string, reviewedAt time.Time) error {
	if r.reviewErr != nil {
		return r.reviewErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[userID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if v.Status != entities.StatusPending {
		return domainerrors.ErrStatusConflict
	}
	v.Status = to
	v.ReviewedAt.SetValid(reviewedAt)
	v.ReviewedBy.SetValid(reviewedBy.String())
	if to == entities.StatusRejected {
		v.RejectionReason.SetValid(reason)
	} else {
		v.RejectionReason.Valid = false
	}
	return nil
}

// fakeUnitOfWork runs the function without a real transaction
type fakeUnitOfWork struct {
	doErr error
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if u.doErr != nil {
		return u.doErr
	}
	return fn(ctx)
}

// fakeMailer records sent codes
type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, _, code string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+":"+code)
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fakeCooldown is a deterministic CooldownStore
type fakeCooldown struct {
	mu        sync.Mutex
	windows   map[string]bool
	remaining time.Duration
	err       error
}

func newFakeCooldown() *fakeCooldown {
	return &fakeCooldown{windows: map[string]bool{}, remaining: 42 * time.Second}
}

func (c *fakeCooldown) Acquire(_ context.Context, key string, _ time.Duration) (bool, time.Duration, error) {
	if c.err != nil {
		return false, 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.windows[key] {
		return false, c.remaining, nil
	}
	c.windows[key] = true
	return true, 0, nil
}

// fakeStore is an in-memory document store
type fakeStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	saveErr map[string]error // keyed by filename
}

func newFakeStore() *fakeStore {
	return &fakeStore{saveErr: map[string]error{}}
}

func (s *fakeStore) Save(_ context.Context, name string, content io.Reader, _ int64) (string, error) {
	if err := s.saveErr[name]; err != nil {
		return "", err
	}
	if content != nil {
		if _, err := io.Copy(io.Discard, content); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	webPath := fmt.Sprintf("/uploads/%d-%s", len(s.saved), name)
	s.saved = append(s.saved, webPath)
	return webPath, nil
}

func (s *fakeStore) Remove(_ context.Context, webPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, webPath)
	return nil
}
