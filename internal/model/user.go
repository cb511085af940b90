package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordDigest はbcryptのダイジェストで、APIレスポンスには決して含めない。
// Email と Username はそれぞれグローバルに一意（大文字小文字を区別する完全一致）。
type User struct {
	ID             int64
	Email          string
	Username       string
	PasswordDigest string
	IsActive       bool
	CreatedAt      time.Time
}
