package session

import "context"

// CookieStore はセッション全体を署名付きCookieに保持するStore。
type CookieStore struct {
	codec *Codec
}

// NewCookieStore は新しいCookieStoreを生成する。
func NewCookieStore(codec *Codec) *CookieStore {
	return &CookieStore{codec: codec}
}

// Commit はセッションを署名付きCookieに符号化する。
func (s *CookieStore) Commit(_ context.Context, sess Session) (string, error) {
	return s.codec.Encode(sess)
}

// Load は署名付きCookieからセッションを復号する。
func (s *CookieStore) Load(_ context.Context, cookieHeader string) (Session, bool) {
	return s.codec.Decode(cookieHeader)
}

// Destroy は失効済みCookieを返す。サーバー側に破棄する状態は無い。
func (s *CookieStore) Destroy(_ context.Context, _ string) (string, error) {
	return s.codec.Destroy(), nil
}
