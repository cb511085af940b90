// Package note はノートのライフサイクルと楽観的排他制御のドメインロジックを提供する。
package note

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/notehub/internal/model"
	"github.com/hitoshi/notehub/internal/repository"
	"github.com/hitoshi/notehub/internal/security"
)

const (
	// defaultListLimit はlimit未指定時の取得件数。
	defaultListLimit = 100
	// maxListLimit はlimitの上限。超過分は拒否せずこの値に丸める。
	maxListLimit = 1000
)

// MetricsRecorder はノート操作のメトリクス記録のインターフェース。
type MetricsRecorder interface {
	RecordNoteCreated()
	RecordNoteUpdated()
	RecordNoteDeleted()
	RecordVersionConflict()
}

// Service はノート管理のサービス層。
// 所有権・可視性の判定とバージョン付き更新の失敗セマンティクスを一元管理する。
type Service struct {
	noteRepo  repository.NoteRepository
	sanitizer security.ContentSanitizer
	metrics   MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよく、その場合メトリクスは記録されない。
func NewService(noteRepo repository.NoteRepository, sanitizer security.ContentSanitizer, metrics MetricsRecorder) *Service {
	return &Service{
		noteRepo:  noteRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Create は新規ノートを作成する。version=1、updated_at=nilで開始する。
// タイトルが空の場合はINVALID_INPUTを返す。
// 本文とタイトルは保存前にサニタイズされる。
func (s *Service) Create(ctx context.Context, ownerID int64, title, content string, isPublic bool) (*model.Note, error) {
	title = s.sanitizer.SanitizeTitle(title)
	if title == "" {
		return nil, model.NewInvalidInputError("タイトルは必須です")
	}

	note := &model.Note{
		OwnerID:  ownerID,
		Title:    title,
		Content:  s.sanitizer.SanitizeContent(content),
		IsPublic: isPublic,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordNoteCreated()
	}

	return note, nil
}

// Get は指定IDのノートを取得する。
// ノートが存在しない場合と、非公開ノートを所有者以外が要求した場合の
// どちらもNOTE_NOT_FOUNDを返し、区別できないようにする。
func (s *Service) Get(ctx context.Context, noteID, callerID int64) (*model.Note, error) {
	note, err := s.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	if note == nil || !note.CanRead(callerID) {
		return nil, model.NewNoteNotFoundError(noteID)
	}

	return note, nil
}

// ListByOwner は指定ユーザーが所有するノートをid昇順で返す。
func (s *Service) ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]*model.Note, error) {
	skip, limit, err := normalizePagination(skip, limit)
	if err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

// ListPublic は公開ノートをid昇順で返す。認証なしで呼び出せる。
func (s *Service) ListPublic(ctx context.Context, skip, limit int) ([]*model.Note, error) {
	skip, limit, err := normalizePagination(skip, limit)
	if err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListPublic(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public notes: %w", err)
	}

	return notes, nil
}

// Update はバージョン付きの条件付き更新を行う。
//
// expectedVersionが現在のバージョンと一致する場合のみパッチを適用し、
// versionを+1してupdated_atを設定する。比較と書き込みはリポジトリの
// 単一の条件付きUPDATEで不可分に行われ、同一バージョンを指定して競合する
// 更新のうち成功するのは高々1つ。敗者にはVERSION_CONFLICTを返し、
// パッチは一切適用しない。再試行は呼び出し元の責務であり、
// サーバー側で暗黙に再取得・再適用することはない。
//
// ノートが存在しない場合と呼び出し元が所有者でない場合は、どちらも
// NOTE_NOT_FOUNDを返す（非所有者にノートの存在を漏らさない）。
func (s *Service) Update(ctx context.Context, noteID, callerID int64, expectedVersion int, patch model.NotePatch) (*model.Note, error) {
	if expectedVersion < 1 {
		return nil, model.NewInvalidInputError("expected_versionは1以上を指定してください")
	}
	if patch.Title != nil {
		title := s.sanitizer.SanitizeTitle(*patch.Title)
		if title == "" {
			return nil, model.NewInvalidInputError("タイトルは空にできません")
		}
		patch.Title = &title
	}
	if patch.Content != nil {
		content := s.sanitizer.SanitizeContent(*patch.Content)
		patch.Content = &content
	}

	updated, err := s.noteRepo.UpdateWithVersion(ctx, noteID, callerID, expectedVersion, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if updated != nil {
		if s.metrics != nil {
			s.metrics.RecordNoteUpdated()
		}
		return updated, nil
	}

	// 条件付きUPDATEが空振りした原因を特定する。
	// 不在または所有者不一致はNOTE_NOT_FOUND、それ以外はバージョン競合。
	current, err := s.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	if current == nil || !current.CanWrite(callerID) {
		return nil, model.NewNoteNotFoundError(noteID)
	}

	if s.metrics != nil {
		s.metrics.RecordVersionConflict()
	}
	slog.Info("version conflict",
		slog.Int64("note_id", noteID),
		slog.Int("expected_version", expectedVersion),
		slog.Int("current_version", current.Version),
	)

	return nil, model.NewVersionConflictError(noteID)
}

// Delete はノートを削除する。削除は即時かつ恒久的で、バージョンは確認しない。
// ノートが存在しない場合と呼び出し元が所有者でない場合は、どちらも
// NOTE_NOT_FOUNDを返す。削除済みIDの再削除も常にNOTE_NOT_FOUNDになる。
func (s *Service) Delete(ctx context.Context, noteID, callerID int64) error {
	deleted, err := s.noteRepo.Delete(ctx, noteID, callerID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if !deleted {
		return model.NewNoteNotFoundError(noteID)
	}

	if s.metrics != nil {
		s.metrics.RecordNoteDeleted()
	}

	return nil
}

// normalizePagination はページネーション引数を検証して正規化する。
// 負の値はINVALID_INPUT、limit=0はデフォルト値、上限超過は丸め。
func normalizePagination(skip, limit int) (int, int, error) {
	if skip < 0 {
		return 0, 0, model.NewInvalidInputError("skipは0以上を指定してください")
	}
	if limit < 0 {
		return 0, 0, model.NewInvalidInputError("limitは0以上を指定してください")
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return skip, limit, nil
}
