// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/notehub/internal/model"
)

// validate はリクエストボディの検証に使用する共有バリデータ。
var validate = validator.New()

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, email, username, password string) (*model.User, error)
	// Login は資格情報を検証し、ベアラートークンを発行する。
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// maxPasswordBytes はbcryptが受け付けるパスワードの最大バイト長。
const maxPasswordBytes = 72

// registerRequest はユーザー登録リクエストのボディ。
// passwordのバイト長上限はvalidatorタグではなくハンドラーで検証する
// （maxタグはルーン数を数えるため、マルチバイト文字で上限をすり抜ける）。
type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードダイジェストは含めない。
type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// tokenResponse はログイン成功時のAPIレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register はユーザー登録を処理する。
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("リクエストボディの解析に失敗しました"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("email、username、passwordの形式を確認してください"))
		return
	}
	if len(req.Password) > maxPasswordBytes {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("passwordは72バイト以内で指定してください"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	})
}

// Login はログインを処理する。リクエストボディはフォームエンコード形式。
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("フォームの解析に失敗しました"))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		// 資格情報の欠落も資格情報の不一致と同じ応答にする
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	token, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
