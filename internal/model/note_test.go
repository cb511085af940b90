package model

import "testing"

// 読み取り可否の判定を検証する。
// 公開ノートは誰でも、非公開ノートは所有者のみ読める。
func TestNote_CanRead(t *testing.T) {
	tests := []struct {
		name     string
		note     Note
		callerID int64
		want     bool
	}{
		{name: "owner reads private note", note: Note{OwnerID: 1, IsPublic: false}, callerID: 1, want: true},
		{name: "non-owner reads private note", note: Note{OwnerID: 1, IsPublic: false}, callerID: 2, want: false},
		{name: "owner reads public note", note: Note{OwnerID: 1, IsPublic: true}, callerID: 1, want: true},
		{name: "non-owner reads public note", note: Note{OwnerID: 1, IsPublic: true}, callerID: 2, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.CanRead(tt.callerID); got != tt.want {
				t.Errorf("CanRead(%d) = %v, want %v", tt.callerID, got, tt.want)
			}
		})
	}
}

// 書き込み可否の判定を検証する。公開状態に関わらず所有者のみ書ける。
func TestNote_CanWrite(t *testing.T) {
	tests := []struct {
		name     string
		note     Note
		callerID int64
		want     bool
	}{
		{name: "owner writes private note", note: Note{OwnerID: 1, IsPublic: false}, callerID: 1, want: true},
		{name: "owner writes public note", note: Note{OwnerID: 1, IsPublic: true}, callerID: 1, want: true},
		{name: "non-owner writes public note", note: Note{OwnerID: 1, IsPublic: true}, callerID: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.CanWrite(tt.callerID); got != tt.want {
				t.Errorf("CanWrite(%d) = %v, want %v", tt.callerID, got, tt.want)
			}
		})
	}
}
