// Package model はドメインモデルを定義する。
package model

import "time"

// VerificationToken はメールアドレスの所有確認に使う期限付きトークンを表す。
// 発行時に作成され、本人が確認するとConsumedAtが設定され、
// それ以外は有効期限の経過で失効する。
type VerificationToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// VerificationStatus はトークンの分類結果を表す。
// 3つのフラグは排他であり、同時に複数がtrueになることはない。
type VerificationStatus struct {
	IsVerified      bool
	HasPendingToken bool
	IsExpired       bool
}
