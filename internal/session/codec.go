package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession は必須フィールドが欠けたセッションを保存しようとしたことを表す。
var ErrInvalidSession = errors.New("セッションにはtoken・email・userIdがすべて必要です")

// claims は署名付きCookieのペイロード。
type claims struct {
	jwt.RegisteredClaims
	Token  string `json:"token"`
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// Codec はセッションをHS256で署名したCookieとして符号化・復号する。
type Codec struct {
	secret []byte
	opts   CookieOptions
	now    func() time.Time
}

// NewCodec は新しいCodecを生成する。secretが空の場合はエラーを返す。
func NewCodec(secret string, opts CookieOptions) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("セッションの署名鍵が空です")
	}
	return &Codec{
		secret: []byte(secret),
		opts:   opts.withDefaults(),
		now:    time.Now,
	}, nil
}

// Encode はセッションを署名し、Set-Cookieヘッダーの値を返す。
func (c *Codec) Encode(s Session) (string, error) {
	if !s.Valid() {
		return "", ErrInvalidSession
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.opts.MaxAge)),
		},
		Token:  s.Token,
		Email:  s.Email,
		UserID: s.UserID,
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("セッションの署名に失敗: %w", err)
	}
	return c.opts.setCookie(signed, now), nil
}

// Decode はCookieヘッダーからセッションを復号する。
// Cookieが無い・署名が不正・期限切れ・フィールド欠落の場合は false を返す。
func (c *Codec) Decode(cookieHeader string) (Session, bool) {
	value, ok := cookieValue(cookieHeader, c.opts.Name)
	if !ok {
		return Session{}, false
	}

	cl := &claims{}
	token, err := jwt.ParseWithClaims(value, cl, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return Session{}, false
	}

	s := Session{Token: cl.Token, Email: cl.Email, UserID: cl.UserID}
	if !s.Valid() {
		return Session{}, false
	}
	return s, true
}

// Destroy はセッションCookieを即時失効させるSet-Cookieの値を返す。
func (c *Codec) Destroy() string {
	return c.opts.expiredCookie()
}
