package model

import "time"

// Note はユーザーが所有するノートを表す。
//
// Version は楽観的排他制御のためのカウンタ。作成時は1で、更新が成功する
// たびに正確に+1される。読み取りでは変化せず、減少することもない。
// 同一の (ID, Version) に対して成功する更新は高々1回。
type Note struct {
	ID        int64
	OwnerID   int64
	Title     string
	Content   string
	IsPublic  bool
	Version   int
	CreatedAt time.Time
	UpdatedAt *time.Time // 初回更新まではnil
}

// NotePatch はノートの部分更新の入力を表す。
// nilのフィールドは変更せず、既存の値を維持する。
type NotePatch struct {
	Title    *string
	Content  *string
	IsPublic *bool
}

// CanRead は指定ユーザーがこのノートを閲覧できるかを返す。
// 公開ノートは誰でも、非公開ノートは所有者のみ閲覧できる。
func (n *Note) CanRead(userID int64) bool {
	return n.IsPublic || n.OwnerID == userID
}

// CanWrite は指定ユーザーがこのノートを変更できるかを返す。
// 公開設定にかかわらず、変更できるのは所有者のみ。
func (n *Note) CanWrite(userID int64) bool {
	return n.OwnerID == userID
}
