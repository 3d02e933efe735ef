package notesapi

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyNote はタイトルと本文が両方とも空のノート入力を表す。
var ErrEmptyNote = errors.New("please provide a title or content")

// Note はNotes APIが所有するノート。
// このサービスはノートを永続化せず、APIの表現をそのまま中継する。
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteInput はノートの作成・更新リクエストのボディ。
type NoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ListQuery はノート一覧の絞り込み条件。空のフィールドは送信しない。
type ListQuery struct {
	Search string
	Tag    string
}

// LoginResult は POST /auth/login の成功レスポンス。
type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// RegisterResult は POST /auth/register の成功レスポンス。
type RegisterResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// DeleteResult はノート削除の結果。
type DeleteResult struct {
	Success bool `json:"success"`
}

// ParseTags はカンマ区切りのタグ文字列を順序を保ったまま分割する。
// 各要素の前後の空白を取り除き、空の要素は捨てる。
func ParseTags(csv string) []string {
	tags := []string{}
	for _, part := range strings.Split(csv, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NewNoteInput はフォーム入力からNoteInputを組み立てる。
// タイトルと本文が両方とも空の場合は ErrEmptyNote を返す。
func NewNoteInput(title, content, tagsCSV string) (NoteInput, error) {
	if title == "" && content == "" {
		return NoteInput{}, ErrEmptyNote
	}
	return NoteInput{
		Title:   title,
		Content: content,
		Tags:    ParseTags(tagsCSV),
	}, nil
}
