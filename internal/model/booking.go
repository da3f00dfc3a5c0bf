// Package model はドメインモデルを定義する。
package model

import "time"

// BookingStatus は予約のライフサイクル状態を表す。
type BookingStatus string

const (
	// BookingStatusPending は決済の裁定待ちの初期状態。
	BookingStatusPending BookingStatus = "PENDING"
	// BookingStatusConfirmed は決済承認により確定した状態。
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	// BookingStatusCancelled は決済却下または管理者操作により取り消された状態。
	BookingStatusCancelled BookingStatus = "CANCELLED"
	// BookingStatusCompleted はレッスン実施済みの終端状態。
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// ValidBookingStatus は値が定義済みの予約状態かどうかを返す。
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// PaymentState は予約側に記録される決済の状態を表す。
// Payment.Statusとは別のフィールドであり、裁定時に両者が同時に遷移する。
type PaymentState string

const (
	// PaymentStatePending は決済の裁定待ち。
	PaymentStatePending PaymentState = "PENDING"
	// PaymentStatePaid は決済承認済み。
	PaymentStatePaid PaymentState = "PAID"
	// PaymentStateFailed は決済却下済み。
	PaymentStateFailed PaymentState = "FAILED"
)

// Booking は受講者と講師の間で予約された時間枠を表す。
// StatusとPaymentStatusは独立ではなく、決済裁定による遷移では
// 必ず両フィールドが同時に更新される（payment.Serviceを参照）。
type Booking struct {
	ID            string
	TeacherID     string
	StudentID     string
	StartsAt      time.Time
	EndsAt        time.Time
	Status        BookingStatus
	PaymentStatus PaymentState
	MeetLink      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
