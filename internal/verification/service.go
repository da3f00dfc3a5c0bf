package verification

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah34123513/english-sub002/internal/model"
	"github.com/Abdullah34123513/english-sub002/internal/repository"
)

// UserVerifier はトークン消費時にユーザーの確認済みフラグを更新するインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserVerifier interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	SetEmailVerified(ctx context.Context, userID string, verified bool) error
}

// ServiceConfig は確認トークンサービスの設定。
type ServiceConfig struct {
	TokenTTL time.Duration // トークンの有効期間
}

// Service はメール確認トークンの発行・消費と状態分類を提供する。
// トークンの平文はストアに保存せず、SHA-256ハッシュのみを保存する。
type Service struct {
	tokenRepo repository.VerificationTokenRepository
	users     UserVerifier
	config    ServiceConfig
	now       func() time.Time
}

// NewService はServiceを生成する。
// nowFnがnilの場合はtime.Nowを使用する。
func NewService(tokenRepo repository.VerificationTokenRepository, users UserVerifier, config ServiceConfig, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		tokenRepo: tokenRepo,
		users:     users,
		config:    config,
		now:       nowFn,
	}
}

// Issue は指定ユーザーの確認トークンを発行し、平文シークレットを返す。
// シークレットは本来メールで送付するもので、ストアにはハッシュのみ残る。
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	secret, err := generateTokenSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}

	now := s.now()
	token := &model.VerificationToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: hashTokenSecret(secret),
		ExpiresAt: now.Add(s.config.TokenTTL),
		CreatedAt: now,
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to save verification token: %w", err)
	}

	slog.Info("verification token issued",
		slog.String("user_id", userID),
		slog.Time("expires_at", token.ExpiresAt),
	)

	return secret, nil
}

// Consume は平文シークレットからトークンを特定して消費し、
// 所有ユーザーのメール確認済みフラグを立てる。
// トークンが存在しない、失効済み、消費済みのいずれもInvalidTokenエラーを返す。
func (s *Service) Consume(ctx context.Context, secret string) error {
	if secret == "" {
		return model.NewValidationError("確認トークンが空です")
	}

	token, err := s.tokenRepo.FindByTokenHash(ctx, hashTokenSecret(secret))
	if err != nil {
		return fmt.Errorf("failed to find verification token: %w", err)
	}
	if token == nil || token.ConsumedAt != nil || token.ExpiresAt.Before(s.now()) {
		return model.NewInvalidTokenError()
	}

	if err := s.tokenRepo.MarkConsumed(ctx, token.ID, s.now()); err != nil {
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	if err := s.users.SetEmailVerified(ctx, token.UserID, true); err != nil {
		return fmt.Errorf("failed to mark user as verified: %w", err)
	}

	slog.Info("email verified",
		slog.String("user_id", token.UserID),
	)

	return nil
}

// StatusFor は指定ユーザーの確認状態を分類して返す。
func (s *Service) StatusFor(ctx context.Context, userID string) (model.VerificationStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.VerificationStatus{}, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.VerificationStatus{}, model.NewUserNotFoundError()
	}

	token, err := s.tokenRepo.FindLatestByUserID(ctx, userID)
	if err != nil {
		return model.VerificationStatus{}, fmt.Errorf("failed to find verification token: %w", err)
	}

	return Classify(user.EmailVerified, token, s.now()), nil
}

// generateTokenSecret は暗号的に安全なトークンシークレットを生成する。
func generateTokenSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashTokenSecret はシークレットの保存用ハッシュを計算する。
func hashTokenSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
