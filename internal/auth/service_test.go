package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/notehub/internal/model"
	"github.com/hitoshi/notehub/internal/repository"
)

// mockUserRepo は関数フィールドで振る舞いを差し替えるモック。
type mockUserRepo struct {
	createFunc         func(ctx context.Context, user *model.User) error
	findByUsernameFunc func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

// fakeHasher はbcryptを使わない決定的なハッシュのフェイク。
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "digest:" + password, nil
}

func (fakeHasher) Verify(digest, password string) bool {
	return digest == "digest:"+password
}

// fakeTokenManager は固定トークンを発行するフェイク。
type fakeTokenManager struct{}

func (fakeTokenManager) Issue(userID int64) (string, error) {
	return "token", nil
}

func (fakeTokenManager) Verify(token string) (int64, error) {
	return 1, nil
}

// 登録時にパスワードがハッシュ化され、生のパスワードが保存されないことを検証する。
func TestService_Register_HashesPassword(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			saved = user
			return nil
		},
	}
	svc := NewService(repo, fakeHasher{}, fakeTokenManager{})

	user, err := svc.Register(context.Background(), "a@example.com", "alice", "secret-password")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID != 1 {
		t.Errorf("user.ID = %d, want 1", user.ID)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
	if saved.PasswordDigest == "secret-password" {
		t.Error("raw password must not be stored")
	}
	if saved.PasswordDigest != "digest:secret-password" {
		t.Errorf("password digest = %q, want hashed value", saved.PasswordDigest)
	}
}

// email/usernameの重複がALREADY_EXISTSに変換されることを検証する。
func TestService_Register_Duplicate(t *testing.T) {
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateKey
		},
	}
	svc := NewService(repo, fakeHasher{}, fakeTokenManager{})

	_, err := svc.Register(context.Background(), "a@example.com", "alice", "secret-password")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeAlreadyExists {
		t.Errorf("error code = %s, want %s", apiErr.Code, model.ErrCodeAlreadyExists)
	}
}

// リポジトリの想定外エラーがそのまま伝播することを検証する。
func TestService_Register_RepositoryError(t *testing.T) {
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			return errors.New("connection refused")
		},
	}
	svc := NewService(repo, fakeHasher{}, fakeTokenManager{})

	_, err := svc.Register(context.Background(), "a@example.com", "alice", "secret-password")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, ok := err.(*model.APIError); ok {
		t.Errorf("infrastructure error should not be an APIError: %v", err)
	}
}

// ログイン成功時にトークンが発行されることを検証する。
func TestService_Login_Success(t *testing.T) {
	repo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{
				ID:             1,
				Username:       username,
				PasswordDigest: "digest:secret-password",
				IsActive:       true,
			}, nil
		},
	}
	svc := NewService(repo, fakeHasher{}, fakeTokenManager{})

	token, err := svc.Login(context.Background(), "alice", "secret-password")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "token" {
		t.Errorf("token = %q, want %q", token, "token")
	}
}

// ユーザー不在・無効化済み・パスワード不一致のいずれも、
// 同一のUNAUTHORIZEDになることを検証する。
func TestService_Login_UniformFailure(t *testing.T) {
	tests := []struct {
		name     string
		user     *model.User
		password string
	}{
		{
			name:     "unknown user",
			user:     nil,
			password: "secret-password",
		},
		{
			name: "inactive user",
			user: &model.User{
				ID:             1,
				PasswordDigest: "digest:secret-password",
				IsActive:       false,
			},
			password: "secret-password",
		},
		{
			name: "wrong password",
			user: &model.User{
				ID:             1,
				PasswordDigest: "digest:secret-password",
				IsActive:       true,
			},
			password: "wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
					return tt.user, nil
				},
			}
			svc := NewService(repo, fakeHasher{}, fakeTokenManager{})

			_, err := svc.Login(context.Background(), "alice", tt.password)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			apiErr, ok := err.(*model.APIError)
			if !ok {
				t.Fatalf("expected *model.APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeUnauthorized {
				t.Errorf("error code = %s, want %s", apiErr.Code, model.ErrCodeUnauthorized)
			}
		})
	}
}
