// Package model はドメインモデルを定義する。
package model

import "time"

// Teacher は講師プロフィールを表す。
// user_idに対して高々1件（UNIQUE制約）。初回アクセス時に遅延作成される。
type Teacher struct {
	ID              string
	UserID          string
	HourlyRateCents int
	Bio             string
	ExperienceYears int
	Education       string
	Languages       []string
	IsActive        bool
	CreatedAt       time.Time
}

// AvailabilitySlot は講師が公開する繰り返しの空き枠を表す。
// 親のTeacherを所有する講師のみが削除できる。
type AvailabilitySlot struct {
	ID          string
	TeacherID   string
	DayOfWeek   int // 0=日曜 〜 6=土曜
	StartMinute int // 0時からの経過分
	EndMinute   int
	IsAvailable bool
	CreatedAt   time.Time
}
