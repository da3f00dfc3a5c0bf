// Package model はドメインモデルを定義する。
package model

import "time"

// PaymentStatus は決済レコードの裁定状態を表す。
type PaymentStatus string

const (
	// PaymentStatusPending は管理者の裁定待ち。
	PaymentStatusPending PaymentStatus = "PENDING"
	// PaymentStatusApproved は管理者が承認した状態。
	PaymentStatusApproved PaymentStatus = "APPROVED"
	// PaymentStatusRejected は管理者が却下した状態。却下理由が必須。
	PaymentStatusRejected PaymentStatus = "REJECTED"
)

// Payment は予約に紐づく決済レコードを表す。
// ApprovedBy/ApprovedAtは承認時のみ、RejectionReasonは却下時のみ設定される。
type Payment struct {
	ID              string
	BookingID       string
	AmountCents     int
	Method          string
	Status          PaymentStatus
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string
	AdminNotes      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
