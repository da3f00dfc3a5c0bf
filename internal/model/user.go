// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleAdmin は管理者。決済の承認・却下と予約の直接編集ができる。
	RoleAdmin Role = "admin"
	// RoleTeacher は講師。自身のプロフィールと空き枠を管理する。
	RoleTeacher Role = "teacher"
	// RoleStudent は受講者。予約の作成と決済の提出ができる。
	RoleStudent Role = "student"
)

// User はサービス利用ユーザーを表す。
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Name          string
	Role          Role
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	Role      Role
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity は認証済みリクエストの主体を表す。
// セッションミドルウェアがリクエストコンテキストに注入する。
type Identity struct {
	UserID string
	Role   Role
}
