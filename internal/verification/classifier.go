// Package verification はメールアドレス確認トークンの発行・消費と、
// トークン状態の分類を提供する。
package verification

import (
	"time"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// Classify はトークンレコードを3状態に分類する純粋関数。
// トークンを変更せず、キャッシュもしない。呼び出しごとに評価される。
//
// 判定の優先順位:
//  1. アカウントのメール確認済みフラグが立っていればIsVerifiedのみtrue。
//     残存するトークン行があっても保留・失効としては報告しない。
//  2. トークンが存在しない（または消費済みの）場合は全てfalse。
//  3. 有効期限がnowより過去ならIsExpiredのみtrue。
//  4. それ以外（未失効のトークンが存在）はHasPendingTokenのみtrue。
func Classify(emailVerified bool, token *model.VerificationToken, now time.Time) model.VerificationStatus {
	if emailVerified {
		return model.VerificationStatus{IsVerified: true}
	}
	if token == nil || token.ConsumedAt != nil {
		return model.VerificationStatus{}
	}
	if token.ExpiresAt.Before(now) {
		return model.VerificationStatus{IsExpired: true}
	}
	return model.VerificationStatus{HasPendingToken: true}
}
