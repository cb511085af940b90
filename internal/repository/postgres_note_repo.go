package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/notehub/internal/model"
)

// PostgresNoteRepo はPostgreSQLを使用したノートリポジトリ。
type PostgresNoteRepo struct {
	db *sql.DB
}

// NewPostgresNoteRepo はPostgresNoteRepoを生成する。
func NewPostgresNoteRepo(db *sql.DB) *PostgresNoteRepo {
	return &PostgresNoteRepo{db: db}
}

// Create はノートを作成し、採番されたID・version=1・作成日時を書き戻す。
// updated_atはNULLのまま（初回更新時に設定される）。
func (r *PostgresNoteRepo) Create(ctx context.Context, note *model.Note) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notes (owner_id, title, content, is_public)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, version, created_at`,
		note.OwnerID, note.Title, note.Content, note.IsPublic,
	).Scan(&note.ID, &note.Version, &note.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	note.UpdatedAt = nil
	return nil
}

// FindByID は指定IDのノートを取得する。見つからない場合はnilを返す。
func (r *PostgresNoteRepo) FindByID(ctx context.Context, id int64) (*model.Note, error) {
	note := &model.Note{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, content, is_public, version, created_at, updated_at
		 FROM notes WHERE id = $1`,
		id,
	).Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content,
		&note.IsPublic, &note.Version, &note.CreatedAt, &note.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find note by ID: %w", err)
	}

	return note, nil
}

// ListByOwner は指定ユーザーが所有するノートをid昇順で返す。
// id昇順の固定順序により、ページネーションが決定的で安定になる。
func (r *PostgresNoteRepo) ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, content, is_public, version, created_at, updated_at
		 FROM notes
		 WHERE owner_id = $1
		 ORDER BY id ASC
		 OFFSET $2 LIMIT $3`,
		ownerID, skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes by owner: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// ListPublic は公開ノートをid昇順で返す。認証なしで呼び出される。
func (r *PostgresNoteRepo) ListPublic(ctx context.Context, skip, limit int) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, content, is_public, version, created_at, updated_at
		 FROM notes
		 WHERE is_public
		 ORDER BY id ASC
		 OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list public notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// UpdateWithVersion は所有者とバージョンが一致する場合のみノートを更新する。
//
// 読み取り・比較・書き込みを単一の条件付きUPDATEとして実行するため、
// 行ロックにより同一 (noteID, expectedVersion) で競合する
// 更新のうち勝者は必ず1つになる。敗者は条件に一致する行がなく
// (nil, nil) を受け取り、パッチは一切適用されない。
// パッチのnilフィールドはCOALESCEにより既存の値を維持する。
func (r *PostgresNoteRepo) UpdateWithVersion(ctx context.Context, noteID, ownerID int64, expectedVersion int, patch model.NotePatch) (*model.Note, error) {
	note := &model.Note{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE notes
		 SET title      = COALESCE($4::text, title),
		     content    = COALESCE($5::text, content),
		     is_public  = COALESCE($6::boolean, is_public),
		     version    = version + 1,
		     updated_at = now()
		 WHERE id = $1 AND owner_id = $2 AND version = $3
		 RETURNING id, owner_id, title, content, is_public, version, created_at, updated_at`,
		noteID, ownerID, expectedVersion,
		patch.Title, patch.Content, patch.IsPublic,
	).Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content,
		&note.IsPublic, &note.Version, &note.CreatedAt, &note.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return note, nil
}

// Delete は所有者が一致する場合のみノートを削除する。削除は即時かつ恒久的。
func (r *PostgresNoteRepo) Delete(ctx context.Context, noteID, ownerID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1 AND owner_id = $2`,
		noteID, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// scanNotes は検索結果の行をNoteのスライスに変換する。
func scanNotes(rows *sql.Rows) ([]*model.Note, error) {
	notes := []*model.Note{}
	for rows.Next() {
		note := &model.Note{}
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content,
			&note.IsPublic, &note.Version, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

// compile-time interface check
var _ NoteRepository = (*PostgresNoteRepo)(nil)
