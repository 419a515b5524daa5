// Package auth はセッションベースの認証サービスを提供する。
// 本人確認（パスワード、外部IdP等）はこのサービスの管轄外であり、
// コアの各操作は認証済みの不透明なユーザーIDのみを受け取る。
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/carbonlog/internal/model"
	"github.com/hitoshi/carbonlog/internal/repository"
)

// ServiceConfig は認証サービスの設定を保持する。
type ServiceConfig struct {
	// SessionMaxAge はセッションの有効期間（秒）。
	SessionMaxAge int
}

// Service はログイン・ログアウト・セッション管理のサービス層。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Login はメールアドレスでユーザーを検索し、存在しなければ作成した上で
// 新しいセッションを発行する。
func (s *Service) Login(ctx context.Context, email string) (*model.User, *model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, &model.APIError{
			Code:     "INVALID_EMAIL",
			Message:  "メールアドレスの形式が不正です。",
			Category: "validation",
			Action:   "正しいメールアドレスを入力してください。",
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	if user == nil {
		now := s.now()
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
		}
	}

	now := s.now()
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}

	return user, session, nil
}

// Logout は指定されたセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("セッションの破棄に失敗しました: %w", err)
	}
	return nil
}

// CurrentUser は認証済みユーザーIDからユーザー情報を取得する。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
