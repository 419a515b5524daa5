package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/carbonlog/internal/model"
)

// --- モック定義 ---

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	users     map[string]*model.User // email -> user
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.users[user.Email] = user
	return nil
}

// mockSessionRepo はrepository.SessionRepositoryのモック実装。
type mockSessionRepo struct {
	sessions  map[string]*model.Session
	createErr error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// --- テスト ---

// TestLogin_CreatesNewUser は未登録メールアドレスでのログインが
// ユーザーとセッションを作成することを検証する。
func TestLogin_CreatesNewUser(t *testing.T) {
	userRepo := newMockUserRepo()
	sessionRepo := newMockSessionRepo()
	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	user, session, err := svc.Login(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alice@example.com")
	}
	if user.ID == "" {
		t.Error("expected non-empty user ID")
	}
	if session.UserID != user.ID {
		t.Errorf("session.UserID = %q, want %q", session.UserID, user.ID)
	}
	if len(userRepo.users) != 1 {
		t.Errorf("users = %d, want 1", len(userRepo.users))
	}
	if len(sessionRepo.sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(sessionRepo.sessions))
	}
}

// TestLogin_ExistingUser は既存ユーザーでのログインがユーザーを再作成しないことを検証する。
func TestLogin_ExistingUser(t *testing.T) {
	userRepo := newMockUserRepo()
	sessionRepo := newMockSessionRepo()
	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	first, _, err := svc.Login(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	second, _, err := svc.Login(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("user ID differs: %q vs %q", first.ID, second.ID)
	}
	if len(userRepo.users) != 1 {
		t.Errorf("users = %d, want 1", len(userRepo.users))
	}
	// セッションはログインごとに発行される
	if len(sessionRepo.sessions) != 2 {
		t.Errorf("sessions = %d, want 2", len(sessionRepo.sessions))
	}
}

// TestLogin_NormalizesEmail はメールアドレスが小文字化・トリムされることを検証する。
func TestLogin_NormalizesEmail(t *testing.T) {
	userRepo := newMockUserRepo()
	svc := NewService(userRepo, newMockSessionRepo(), ServiceConfig{SessionMaxAge: 3600})

	user, _, err := svc.Login(context.Background(), "  Alice@Example.COM ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alice@example.com")
	}
}

// TestLogin_InvalidEmail は不正なメールアドレスが拒否されることを検証する。
func TestLogin_InvalidEmail(t *testing.T) {
	svc := NewService(newMockUserRepo(), newMockSessionRepo(), ServiceConfig{SessionMaxAge: 3600})

	tests := []string{"", "   ", "not-an-email"}
	for _, email := range tests {
		_, _, err := svc.Login(context.Background(), email)
		if err == nil {
			t.Errorf("Login(%q): expected error, got nil", email)
			continue
		}
		apiErr, ok := err.(*model.APIError)
		if !ok {
			t.Errorf("Login(%q): expected *model.APIError, got %T", email, err)
			continue
		}
		if apiErr.Code != "INVALID_EMAIL" {
			t.Errorf("Login(%q): Code = %q, want INVALID_EMAIL", email, apiErr.Code)
		}
	}
}

// TestLogin_SessionExpiry はセッション有効期限が設定値に従うことを検証する。
func TestLogin_SessionExpiry(t *testing.T) {
	svc := NewService(newMockUserRepo(), newMockSessionRepo(), ServiceConfig{SessionMaxAge: 3600})
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, session, err := svc.Login(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := fixed.Add(time.Hour)
	if !session.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, want)
	}
}

// TestLogin_SessionCreateError はセッション作成失敗が伝播することを検証する。
func TestLogin_SessionCreateError(t *testing.T) {
	sessionRepo := newMockSessionRepo()
	sessionRepo.createErr = errors.New("insert failed")
	svc := NewService(newMockUserRepo(), sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	_, _, err := svc.Login(context.Background(), "alice@example.com")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TestLogout_DeletesSession はログアウトでセッションが削除されることを検証する。
func TestLogout_DeletesSession(t *testing.T) {
	sessionRepo := newMockSessionRepo()
	svc := NewService(newMockUserRepo(), sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	_, session, err := svc.Login(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), session.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sessionRepo.sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessionRepo.sessions))
	}
}

// TestCurrentUser_Success は認証済みIDからユーザーを取得できることを検証する。
func TestCurrentUser_Success(t *testing.T) {
	userRepo := newMockUserRepo()
	svc := NewService(userRepo, newMockSessionRepo(), ServiceConfig{SessionMaxAge: 3600})

	created, _, err := svc.Login(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, err := svc.CurrentUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("ID = %q, want %q", user.ID, created.ID)
	}
}

// TestCurrentUser_NotFound は未知のIDがUserNotFoundになることを検証する。
func TestCurrentUser_NotFound(t *testing.T) {
	svc := NewService(newMockUserRepo(), newMockSessionRepo(), ServiceConfig{SessionMaxAge: 3600})

	_, err := svc.CurrentUser(context.Background(), "missing-id")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}
