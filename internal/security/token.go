package security

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer はJWTのiss（発行者）クレームに設定する値。
const tokenIssuer = "notehub"

// TokenManager はベアラートークンの発行と検証のインターフェースを定義する。
// トークンの中身はこのパッケージの外からは不透明として扱う。
type TokenManager interface {
	// Issue は指定ユーザーIDを主体とする有効期限付きトークンを発行する。
	Issue(userID int64) (string, error)
	// Verify はトークンを検証し、主体のユーザーIDを返す。
	// 不正・改ざん・期限切れのいずれの場合も区別せずエラーを返す。
	Verify(token string) (int64, error)
}

// jwtManager はHS256署名のJWTを使用したTokenManagerの実装。
type jwtManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager はHS256署名のJWTベースのTokenManagerを生成する。
func NewTokenManager(secret string, expiry time.Duration) *jwtManager {
	return &jwtManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue は指定ユーザーIDを主体とする有効期限付きトークンを発行する。
func (m *jwtManager) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、主体のユーザーIDを返す。
// 署名方式の確認と有効期限の検証はjwtライブラリに委譲する。
func (m *jwtManager) Verify(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", err)
	}

	return userID, nil
}

// compile-time interface check
var _ TokenManager = (*jwtManager)(nil)
