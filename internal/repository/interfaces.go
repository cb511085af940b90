// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/notehub/internal/model"
)

// ErrDuplicateKey は一意制約違反を表すセンチネルエラー。
// サービス層でerrors.Isによりドメインエラーへ変換する。
var ErrDuplicateKey = errors.New("unique constraint violation")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDと作成日時を書き戻す。
	// emailまたはusernameが既存行と重複する場合はErrDuplicateKeyを返す。
	// 重複判定は事前チェックではなく一意制約で行う。
	Create(ctx context.Context, user *model.User) error

	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// NoteRepository はノートデータの永続化インターフェース。
// versionカウンタとupdated_atの更新はこのインターフェースの実装のみが行う。
type NoteRepository interface {
	// Create はノートを作成し、採番されたID・version=1・作成日時を書き戻す。
	Create(ctx context.Context, note *model.Note) error

	// FindByID は指定IDのノートを取得する。見つからない場合はnilを返す。
	// 可視性のフィルタリングは行わない（認可は呼び出し側の責務）。
	FindByID(ctx context.Context, id int64) (*model.Note, error)

	// ListByOwner は指定ユーザーが所有するノートをid昇順で返す。
	// skip件をスキップし、最大limit件を返す。
	ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]*model.Note, error)

	// ListPublic は公開ノートをid昇順で返す。ページネーション契約はListByOwnerと同じ。
	ListPublic(ctx context.Context, skip, limit int) ([]*model.Note, error)

	// UpdateWithVersion は所有者とバージョンが一致する場合のみノートを更新する。
	// 比較と書き込みは単一の条件付きUPDATEとして不可分に実行され、
	// 同一 (noteID, expectedVersion) で競合する更新は高々1つだけ成功する。
	// 成功時はversionを+1しupdated_atを設定した更新後のノートを返す。
	// 条件に一致する行が存在しない場合は (nil, nil) を返す。
	// 不在・所有者不一致・バージョン不一致の区別は呼び出し側で行う。
	UpdateWithVersion(ctx context.Context, noteID, ownerID int64, expectedVersion int, patch model.NotePatch) (*model.Note, error)

	// Delete は所有者が一致する場合のみノートを削除する。
	// 削除した場合はtrueを、条件に一致する行が存在しない場合はfalseを返す。
	// バージョンの一致は要求しない。
	Delete(ctx context.Context, noteID, ownerID int64) (bool, error)
}
