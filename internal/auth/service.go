// Package auth はユーザー登録とログインのドメインロジックを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/notehub/internal/model"
	"github.com/hitoshi/notehub/internal/repository"
	"github.com/hitoshi/notehub/internal/security"
)

// Service は認証のサービス層。
// 登録時のパスワードハッシュ化と、ログイン時の資格情報検証・トークン発行を行う。
type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	tokens   security.TokenManager
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher, tokens security.TokenManager) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register は新規ユーザーを登録する。
// 生のパスワードは保存せず、ダイジェストのみを永続化する。
// emailまたはusernameが既存ユーザーと重複する場合はALREADY_EXISTSを返す。
// 重複判定は一意制約に依存し、チェックと挿入の間に競合の余地はない。
func (s *Service) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          email,
		Username:       username,
		PasswordDigest: digest,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, model.NewAlreadyExistsError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// Login は資格情報を検証し、ベアラートークンを発行する。
// ユーザーが存在しない・無効化されている・パスワードが一致しない、の
// いずれの場合も同一のUNAUTHORIZEDを返し、どの要素が失敗したかを漏らさない。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsActive || !s.hasher.Verify(user.PasswordDigest, password) {
		return "", model.NewUnauthorizedError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}
