package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/notehub/internal/logger"
)

// mockLogVerifier は固定ユーザーIDを返すトークン検証のモック。
type mockLogVerifier struct {
	userID int64
}

func (m *mockLogVerifier) Verify(token string) (int64, error) {
	return m.userID, nil
}

// ロギングが認証より外側に位置していても、認証済みリクエストの
// ログにuser_idが含まれることを検証する。
func TestLoggingMiddleware_UserIDFromInnerAuth(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Setup(&buf)

	// 実運用と同じ順序: Logging → Auth → ハンドラー
	handler := NewLoggingMiddleware(log, nil)(
		NewAuthMiddleware(&mockLogVerifier{userID: 42})(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["user_id"] != "42" {
		t.Errorf("user_id = %v, want %q", entry["user_id"], "42")
	}
	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
}

// 未認証リクエストのログにはuser_idが含まれないことを検証する。
func TestLoggingMiddleware_NoUserIDWithoutAuth(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Setup(&buf)

	handler := NewLoggingMiddleware(log, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if _, ok := entry["user_id"]; ok {
		t.Errorf("user_id should be absent for unauthenticated request, got %v", entry["user_id"])
	}
}
