// Package security は認証・認可まわりの暗号プリミティブと
// コンテンツサニタイズを提供する。
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードのハッシュ化と検証のインターフェースを定義する。
// 生のパスワードは保存せず、ダイジェストのみを永続化する。
type PasswordHasher interface {
	// Hash は生のパスワードからダイジェストを生成する。
	Hash(password string) (string, error)
	// Verify はダイジェストと生のパスワードが一致するかを返す。
	Verify(digest, password string) bool
}

// bcryptHasher はbcryptを使用したPasswordHasherの実装。
type bcryptHasher struct {
	cost int
}

// NewPasswordHasher はbcryptベースのPasswordHasherを生成する。
// costが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewPasswordHasher(cost int) *bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

// Hash は生のパスワードからbcryptダイジェストを生成する。
func (h *bcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify はダイジェストと生のパスワードが一致するかを返す。
func (h *bcryptHasher) Verify(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*bcryptHasher)(nil)
