package session

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultCookieName はセッションCookieの名前。
	DefaultCookieName = "auth"
	// DefaultMaxAge はセッションCookieの有効期間（30日）。
	DefaultMaxAge = 30 * 24 * time.Hour
)

// Session はCookieから復元した認証情報。
type Session struct {
	// Token はNotes APIに渡すBearerトークン。
	Token string `json:"token"`
	// Email はログインしたユーザーのメールアドレス。
	Email string `json:"email"`
	// UserID はNotes API上のユーザーID。
	UserID string `json:"userId"`
}

// Valid は3つのフィールドがすべて空でない場合にtrueを返す。
// 1つでも欠けたセッションは匿名として扱う。
func (s Session) Valid() bool {
	return s.Token != "" && s.Email != "" && s.UserID != ""
}

// Store はセッションの保存方式を抽象化する。
// ルートのロジックは実装（署名付きCookie・サーバー側ストア）を意識しない。
type Store interface {
	// Commit はセッションを保存し、レスポンスに付与するSet-Cookieの値を返す。
	Commit(ctx context.Context, s Session) (string, error)
	// Load はリクエストのCookieヘッダーからセッションを復元する。
	// 復元できない場合は false を返し、エラーにはしない。
	Load(ctx context.Context, cookieHeader string) (Session, bool)
	// Destroy はセッションを破棄し、Cookieを即時失効させるSet-Cookieの値を返す。
	Destroy(ctx context.Context, cookieHeader string) (string, error)
}

// CookieOptions はセッションCookieの属性。
type CookieOptions struct {
	// Name はCookie名。
	Name string
	// Path はCookieのパス。
	Path string
	// MaxAge はCookieの有効期間。
	MaxAge time.Duration
	// Secure はSecure属性を付与するかどうか。
	Secure bool
}

// DefaultCookieOptions は既定のCookie属性を返す。
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Name:   DefaultCookieName,
		Path:   "/",
		MaxAge: DefaultMaxAge,
	}
}

func (o CookieOptions) withDefaults() CookieOptions {
	def := DefaultCookieOptions()
	if o.Name == "" {
		o.Name = def.Name
	}
	if o.Path == "" {
		o.Path = def.Path
	}
	if o.MaxAge <= 0 {
		o.MaxAge = def.MaxAge
	}
	return o
}

// setCookie はvalueを持つSet-Cookieの値を組み立てる。
func (o CookieOptions) setCookie(value string, now time.Time) string {
	c := &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		MaxAge:   int(o.MaxAge / time.Second),
		Expires:  now.Add(o.MaxAge).UTC(),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return c.String()
}

// expiredCookie はCookieを即時失効させるSet-Cookieの値を組み立てる。
func (o CookieOptions) expiredCookie() string {
	c := &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     o.Path,
		MaxAge:   -1, // Max-Age=0 として出力される
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return c.String()
}

// cookieValue はCookieヘッダーから指定名のCookieの値を取り出す。
// 他のCookieが壊れていても対象のCookieだけを読む。
func cookieValue(cookieHeader, name string) (string, bool) {
	if cookieHeader == "" {
		return "", false
	}
	r := &http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
