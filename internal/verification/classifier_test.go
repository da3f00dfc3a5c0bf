package verification

import (
	"testing"
	"time"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// TestClassify はトークン状態の分類を検証する。
// 3つのフラグが排他であることも同時に確認する。
func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	consumed := now.Add(-time.Hour)

	tests := []struct {
		name          string
		emailVerified bool
		token         *model.VerificationToken
		want          model.VerificationStatus
	}{
		{
			name:          "確認済みフラグが最優先",
			emailVerified: true,
			token: &model.VerificationToken{
				ExpiresAt: now.Add(-time.Hour), // 失効済みトークンが残っていても無視
			},
			want: model.VerificationStatus{IsVerified: true},
		},
		{
			name:          "トークンなし",
			emailVerified: false,
			token:         nil,
			want:          model.VerificationStatus{},
		},
		{
			name:          "消費済みトークンはトークンなしと同じ",
			emailVerified: false,
			token: &model.VerificationToken{
				ExpiresAt:  now.Add(time.Hour),
				ConsumedAt: &consumed,
			},
			want: model.VerificationStatus{},
		},
		{
			name:          "期限切れ（1秒前）",
			emailVerified: false,
			token: &model.VerificationToken{
				ExpiresAt: now.Add(-time.Second),
			},
			want: model.VerificationStatus{IsExpired: true},
		},
		{
			name:          "有効期限内は保留",
			emailVerified: false,
			token: &model.VerificationToken{
				ExpiresAt: now.Add(time.Hour),
			},
			want: model.VerificationStatus{HasPendingToken: true},
		},
		{
			name:          "有効期限ちょうどは保留",
			emailVerified: false,
			token: &model.VerificationToken{
				ExpiresAt: now,
			},
			want: model.VerificationStatus{HasPendingToken: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.emailVerified, tt.token, now)
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}

			// 排他性: 同時に複数のフラグが立たない
			trueCount := 0
			for _, f := range []bool{got.IsVerified, got.HasPendingToken, got.IsExpired} {
				if f {
					trueCount++
				}
			}
			if trueCount > 1 {
				t.Errorf("flags are not mutually exclusive: %+v", got)
			}
		})
	}
}
