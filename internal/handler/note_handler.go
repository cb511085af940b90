package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/notehub/internal/middleware"
	"github.com/hitoshi/notehub/internal/model"
)

// NoteServiceInterface はノートハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	// Create は新規ノートを作成する。
	Create(ctx context.Context, ownerID int64, title, content string, isPublic bool) (*model.Note, error)
	// Get は指定IDのノートを取得する。非公開ノートは所有者のみ閲覧できる。
	Get(ctx context.Context, noteID, callerID int64) (*model.Note, error)
	// ListByOwner は指定ユーザーが所有するノートを返す。
	ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]*model.Note, error)
	// ListPublic は公開ノートを返す。
	ListPublic(ctx context.Context, skip, limit int) ([]*model.Note, error)
	// Update はバージョン付きの条件付き更新を行う。
	Update(ctx context.Context, noteID, callerID int64, expectedVersion int, patch model.NotePatch) (*model.Note, error)
	// Delete はノートを削除する。
	Delete(ctx context.Context, noteID, callerID int64) error
}

// NoteHandler はノート管理のHTTPハンドラー。
type NoteHandler struct {
	service NoteServiceInterface
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface) *NoteHandler {
	return &NoteHandler{
		service: service,
	}
}

// createNoteRequest はノート作成リクエストのボディ。
type createNoteRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content"`
	IsPublic bool   `json:"is_public"`
}

// updateNoteRequest はノート更新リクエストのボディ。
// title/content/is_publicは部分更新で、省略されたフィールドは変更されない。
// expected_versionは必須。省略は競合保護の放棄を意味するため、
// 黙ってデフォルトを補うのではなく入力不正として拒否する。
type updateNoteRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content         *string `json:"content"`
	IsPublic        *bool   `json:"is_public"`
	ExpectedVersion *int    `json:"expected_version" validate:"required,min=1"`
}

// noteResponse はノート情報のAPIレスポンス。
type noteResponse struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	IsPublic  bool       `json:"is_public"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// messageResponse は操作結果のメッセージレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// toNoteResponse はドメインモデルをAPIレスポンスに変換する。
func toNoteResponse(note *model.Note) noteResponse {
	return noteResponse{
		ID:        note.ID,
		OwnerID:   note.OwnerID,
		Title:     note.Title,
		Content:   note.Content,
		IsPublic:  note.IsPublic,
		Version:   note.Version,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// toNoteListResponse はノートのスライスをAPIレスポンスに変換する。
func toNoteListResponse(notes []*model.Note) []noteResponse {
	res := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		res = append(res, toNoteResponse(note))
	}
	return res
}

// CreateNote はノート作成を処理する。
// POST /api/v1/notes/
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("リクエストボディの解析に失敗しました"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("titleは必須で、200文字以内で指定してください"))
		return
	}

	note, err := h.service.Create(r.Context(), userID, req.Title, req.Content, req.IsPublic)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toNoteResponse(note))
}

// ListNotes は認証済みユーザーが所有するノートの一覧を返す。
// GET /api/v1/notes/?skip=0&limit=100
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	skip, limit, err := parsePagination(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	notes, err := h.service.ListByOwner(r.Context(), userID, skip, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNoteListResponse(notes))
}

// ListPublicNotes は公開ノートの一覧を返す。認証は不要。
// GET /api/v1/notes/public?skip=0&limit=100
func (h *NoteHandler) ListPublicNotes(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePagination(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	notes, err := h.service.ListPublic(r.Context(), skip, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNoteListResponse(notes))
}

// GetNote はノート詳細を返す。
// GET /api/v1/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	noteID, err := parseNoteID(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	note, err := h.service.Get(r.Context(), noteID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNoteResponse(note))
}

// UpdateNote はバージョン付きのノート更新を処理する。
// PUT /api/v1/notes/{id}
//
// 呼び出し元は直前に読み取ったversionをexpected_versionとして必ず送る。
// expected_versionが現在値と一致しない場合は409を返し、パッチは適用されない。
// 409を受け取った呼び出し元は、再取得・再編集の上で再送する。
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	noteID, err := parseNoteID(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("リクエストボディの解析に失敗しました"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewInvalidInputError("expected_versionは必須で、1以上を指定してください"))
		return
	}

	patch := model.NotePatch{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
	}

	note, err := h.service.Update(r.Context(), noteID, userID, *req.ExpectedVersion, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNoteResponse(note))
}

// DeleteNote はノート削除を処理する。
// DELETE /api/v1/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	noteID, err := parseNoteID(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), noteID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{
		Message: "ノートを削除しました。",
	})
}

// parseNoteID はURLパスパラメータからノートIDを取り出す。
func parseNoteID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, model.NewInvalidInputError("ノートIDは整数で指定してください")
	}
	return id, nil
}

// parsePagination はクエリパラメータからskipとlimitを取り出す。
// 未指定の場合はskip=0、limit=0（サービス層でデフォルト値に解決）を返す。
func parsePagination(r *http.Request) (int, int, error) {
	skip, err := parseIntQuery(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

// parseIntQuery は整数クエリパラメータを解析する。未指定はデフォルト値を返す。
func parseIntQuery(r *http.Request, key string, defaultVal int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.NewInvalidInputError(key + "は整数で指定してください")
	}
	return i, nil
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidInput:
		return http.StatusUnprocessableEntity
	case model.ErrCodeAlreadyExists:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeNoteNotFound:
		return http.StatusNotFound
	case model.ErrCodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
