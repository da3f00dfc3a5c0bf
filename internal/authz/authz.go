// Package authz は操作権限の判定述語を提供する。
//
// 役割フィールドの分岐をハンドラーやサービスに散在させず、
// 変更系操作の前に評価する純粋な述語としてここに集約する。
package authz

import "github.com/Abdullah34123513/english-sub002/internal/model"

// CanAdminister は主体が管理者操作（決済の裁定、予約の直接編集）を
// 行えるかどうかを返す。
func CanAdminister(identity model.Identity) bool {
	return identity.Role == model.RoleAdmin
}

// CanActAsTeacher は主体が指定の講師プロフィールの所有者として
// 操作（空き枠の追加・削除、プロフィール更新）を行えるかどうかを返す。
// 管理者であっても他人の講師プロフィールは操作できない。
func CanActAsTeacher(identity model.Identity, teacher *model.Teacher) bool {
	if teacher == nil {
		return false
	}
	return identity.Role == model.RoleTeacher && identity.UserID == teacher.UserID
}

// CanActAsStudent は主体が指定の受講者本人として操作
// （予約の作成、決済の提出）を行えるかどうかを返す。
func CanActAsStudent(identity model.Identity, studentID string) bool {
	return identity.UserID == studentID
}
