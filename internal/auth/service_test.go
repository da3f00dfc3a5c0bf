package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Abdullah34123513/english-sub002/internal/model"
	"github.com/Abdullah34123513/english-sub002/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) SetEmailVerified(ctx context.Context, userID string, verified bool) error {
	return nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, session *model.Session) error
	findByIDFn   func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}
func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type mockTokenIssuer struct {
	issueFn func(ctx context.Context, userID string) (string, error)
}

func (m *mockTokenIssuer) Issue(ctx context.Context, userID string) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(ctx, userID)
	}
	return "secret", nil
}

// --- テスト ---

// TestService_Register は登録の成功経路を検証する。
// パスワードは平文で保存されず、確認トークンが発行される。
func TestService_Register(t *testing.T) {
	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	issuedFor := ""
	tokens := &mockTokenIssuer{
		issueFn: func(ctx context.Context, userID string) (string, error) {
			issuedFor = userID
			return "secret", nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, tokens, nil, ServiceConfig{SessionMaxAge: 86400}, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Student@Example.COM ",
		Password: "password123",
		Name:     "Taro",
		Role:     model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if user.Email != "student@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", user.Email)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Error("password must be stored as bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if user.EmailVerified {
		t.Error("new user must start unverified")
	}
	if issuedFor != user.ID {
		t.Errorf("token issued for %q, want %q", issuedFor, user.ID)
	}
}

// TestService_Register_Validation は登録入力の検証を確認する。
func TestService_Register_Validation(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, &mockTokenIssuer{}, nil, ServiceConfig{}, nil)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{name: "メールアドレスが空", input: RegisterInput{Email: "", Password: "password123"}},
		{name: "メールアドレスの形式不正", input: RegisterInput{Email: "not-an-email", Password: "password123"}},
		{name: "パスワードが短い", input: RegisterInput{Email: "a@example.com", Password: "short"}},
		{name: "admin役割は登録不可", input: RegisterInput{Email: "a@example.com", Password: "password123", Role: model.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
				t.Fatalf("expected VALIDATION_FAILED error, got %v", err)
			}
		})
	}
}

// TestService_Register_DuplicateEmail はメールアドレス重複がEMAIL_TAKENに
// 変換されることを検証する。
func TestService_Register_DuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateKey
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, &mockTokenIssuer{}, nil, ServiceConfig{}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "password123",
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Fatalf("expected EMAIL_TAKEN error, got %v", err)
	}
}

// TestService_Login はログインの成功経路を検証する。
func TestService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "student@example.com" {
				return nil, nil
			}
			return &model.User{ID: "user-1", Email: email, PasswordHash: string(hash), Role: model.RoleStudent}, nil
		},
	}
	var saved *model.Session
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			saved = session
			return nil
		},
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(userRepo, sessionRepo, &mockTokenIssuer{}, nil,
		ServiceConfig{SessionMaxAge: 3600}, func() time.Time { return now })

	session, err := svc.Login(context.Background(), "Student@Example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected session to be saved")
	}
	if session.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", session.UserID)
	}
	if session.Role != model.RoleStudent {
		t.Errorf("Role = %q, want student", session.Role)
	}
	if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, now.Add(time.Hour))
	}
}

// TestService_Login_InvalidCredentials はユーザー不在とパスワード不一致が
// 同一のエラーとして報告されることを検証する。
func TestService_Login_InvalidCredentials(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "exists@example.com" {
				return &model.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
			}
			return nil, nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, &mockTokenIssuer{}, nil, ServiceConfig{}, nil)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "ユーザー不在", email: "missing@example.com", password: "whatever"},
		{name: "パスワード不一致", email: "exists@example.com", password: "wrong-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
				t.Fatalf("expected INVALID_CREDENTIALS error, got %v", err)
			}
		})
	}
}

// TestService_CurrentUser はセッションIDからのユーザー解決を検証する。
func TestService_CurrentUser(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id != "session-1" {
				return nil, nil
			}
			return &model.Session{ID: id, UserID: "user-1", Role: model.RoleStudent}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "student@example.com"}, nil
		},
	}

	svc := NewService(userRepo, sessionRepo, &mockTokenIssuer{}, nil, ServiceConfig{}, nil)

	user, err := svc.CurrentUser(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("ID = %q, want user-1", user.ID)
	}

	// 無効なセッション
	_, err = svc.CurrentUser(context.Background(), "expired-session")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED error, got %v", err)
	}

	// 空のセッションID
	_, err = svc.CurrentUser(context.Background(), "")
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED error for empty session, got %v", err)
	}
}

// TestService_Logout はセッション破棄を検証する。
func TestService_Logout(t *testing.T) {
	deleted := ""
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	svc := NewService(&mockUserRepo{}, sessionRepo, &mockTokenIssuer{}, nil, ServiceConfig{}, nil)

	if err := svc.Logout(context.Background(), "session-1"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if deleted != "session-1" {
		t.Errorf("deleted session %q, want session-1", deleted)
	}

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Error("expected error for empty session ID")
	}
}
