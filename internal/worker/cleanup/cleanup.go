// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 有効期限を過ぎたセッションと、未消費のまま失効したメール確認トークンを
// 日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Abdullah34123513/english-sub002/internal/repository"
)

// PurgeRecorder はクリーンアップ結果のメトリクス記録インターフェース。
type PurgeRecorder interface {
	RecordSessionsPurged(count int)
	RecordTokensPurged(count int)
}

// CleanupJob は期限切れセッションと確認トークンの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessionRepo repository.SessionRepository
	tokenRepo   repository.VerificationTokenRepository
	recorder    PurgeRecorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。
// recorderはnil可。nowFnがnilの場合はtime.Nowを使用する。
func NewCleanupJob(
	sessionRepo repository.SessionRepository,
	tokenRepo repository.VerificationTokenRepository,
	recorder PurgeRecorder,
	logger *slog.Logger,
	nowFn func() time.Time,
) *CleanupJob {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &CleanupJob{
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		recorder:    recorder,
		logger:      logger,
		now:         nowFn,
	}
}

// Run は期限切れセッションと失効した確認トークンを削除する。
// 消費済みトークンは監査のため削除しない。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	now := j.now()

	sessions, err := j.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	tokens, err := j.tokenRepo.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("失効した確認トークンの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("失効した確認トークンの削除に失敗: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordSessionsPurged(int(sessions))
		j.recorder.RecordTokensPurged(int(tokens))
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("sessions_deleted", sessions),
		slog.Int64("tokens_deleted", tokens),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
