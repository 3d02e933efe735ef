package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/notesweb/internal/session"
)

// contextKeySession はGinコンテキストにセッションを格納するキー。
const contextKeySession = "session"

// Session はCookieヘッダーからセッションを復元し、Ginコンテキストに格納するミドルウェアを返す。
// 復元できないリクエストは匿名として後続に渡す。
func Session(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess, ok := store.Load(c.Request.Context(), c.GetHeader("Cookie")); ok {
			c.Set(contextKeySession, sess)
		}
		c.Next()
	}
}

// GetSession はGinコンテキストからセッションを取得する。
// Sessionミドルウェアが事前に適用されている必要がある。
func GetSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(contextKeySession)
	if !ok {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}

// RequireSession はセッションの無いリクエストをonMissingで打ち切るミドルウェアを返す。
func RequireSession(onMissing gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSession(c); !ok {
			onMissing(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectToLogin はログインページへ303でリダイレクトする。
func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/login")
}

// RejectUnauthorized は401を返す。
func RejectUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}
