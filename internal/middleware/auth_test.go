package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockVerifier は関数フィールドで振る舞いを差し替えるモック。
type mockVerifier struct {
	verifyFunc func(token string) (int64, error)
}

func (m *mockVerifier) Verify(token string) (int64, error) {
	return m.verifyFunc(token)
}

// 有効なトークンでユーザーIDがコンテキストに注入されることを検証する。
func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(token string) (int64, error) {
			if token != "valid-token" {
				t.Errorf("token = %q, want %q", token, "valid-token")
			}
			return 42, nil
		},
	}

	var gotUserID int64
	handler := NewAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext returned error: %v", err)
		}
		gotUserID = userID
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotUserID != 42 {
		t.Errorf("userID = %d, want 42", gotUserID)
	}
}

// ヘッダーの欠落・形式不正・検証失敗のいずれも同一の401になることを検証する。
func TestAuthMiddleware_Rejects(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(token string) (int64, error) {
			return 0, errors.New("invalid token")
		},
	}

	handler := NewAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "bearer without token", header: "Bearer"},
		{name: "too many parts", header: "Bearer a b"},
		{name: "invalid token", header: "Bearer bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

// 認証ミドルウェアを通過していないコンテキストからの取得が失敗することを検証する。
func TestUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := UserIDFromContext(req.Context()); err == nil {
		t.Error("expected error for context without user ID")
	}
}
