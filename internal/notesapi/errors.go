package notesapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nao1215/notesweb/pkg/httpclient"
)

// Kind は失敗した操作の種類。
type Kind int

const (
	// KindUnauthorized はログインに失敗したことを表す。
	KindUnauthorized Kind = iota + 1
	// KindRegistrationFailed はユーザー登録に失敗したことを表す。
	KindRegistrationFailed
	// KindFetchFailed はノートの取得に失敗したことを表す。
	KindFetchFailed
	// KindCreateFailed はノートの作成に失敗したことを表す。
	KindCreateFailed
	// KindUpdateFailed はノートの更新に失敗したことを表す。
	KindUpdateFailed
	// KindDeleteFailed はノートの削除に失敗したことを表す。
	KindDeleteFailed
)

// String は種類の識別子を返す。
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRegistrationFailed:
		return "registration failed"
	case KindFetchFailed:
		return "fetch failed"
	case KindCreateFailed:
		return "create failed"
	case KindUpdateFailed:
		return "update failed"
	case KindDeleteFailed:
		return "delete failed"
	default:
		return "unknown"
	}
}

// message は利用者に表示する短いメッセージ。
func (k Kind) message() string {
	switch k {
	case KindUnauthorized:
		return "Invalid credentials"
	case KindRegistrationFailed:
		return "Registration failed"
	case KindFetchFailed:
		return "Failed to fetch notes"
	case KindCreateFailed:
		return "Failed to create note"
	case KindUpdateFailed:
		return "Failed to update note"
	case KindDeleteFailed:
		return "Failed to delete note"
	default:
		return "Notes API request failed"
	}
}

// Error はNotes API呼び出しの失敗を表す。
// StatusCodeは上流のHTTPステータスで、レスポンスが得られなかった場合は0。
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

// Error はエラーメッセージを返す。
func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Kind.message(), e.Err)
	}
	return fmt.Sprintf("%s (status=%d)", e.Kind.message(), e.StatusCode)
}

// Message は利用者向けの短いメッセージを返す。
func (e *Error) Message() string {
	return e.Kind.message()
}

// Unwrap は原因となったエラーを返す。
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthorized はerrが上流の401応答に由来するかどうかを返す。
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// wrap はhttpclientのエラーを操作の種類付きのErrorに変換する。
func wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	apiErr := &Error{Kind: kind, Err: err}
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		apiErr.StatusCode = statusErr.StatusCode
	}
	return apiErr
}
