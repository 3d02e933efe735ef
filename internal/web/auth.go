package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/notesweb/internal/notesapi"
	"github.com/nao1215/notesweb/internal/session"
	"github.com/nao1215/notesweb/pkg/middleware"
)

// credentialsForm はログイン・登録フォームの入力。
type credentialsForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// handleGuestPage はログイン済みなら /app へ、未ログインなら空のページデータを返す。
func (s *Server) handleGuestPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetSession(c); ok {
			c.Redirect(http.StatusSeeOther, "/app")
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}

// handleLogin はNotes APIで認証し、成功したらセッションを開始して /app へリダイレクトする。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := bindCredentials(c)
		if !ok {
			return
		}

		res, err := s.api.Login(c.Request.Context(), form.Email, form.Password)
		if err != nil {
			s.respondLoginError(c, err)
			return
		}
		s.startSession(c, res, form.Email)
	}
}

// handleRegister はユーザーを登録し、続けてログインしてセッションを開始する。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := bindCredentials(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if _, err := s.api.Register(ctx, form.Email, form.Password); err != nil {
			s.respondUpstreamError(c, err)
			return
		}

		res, err := s.api.Login(ctx, form.Email, form.Password)
		if err != nil {
			s.respondLoginError(c, err)
			return
		}
		s.startSession(c, res, form.Email)
	}
}

// handleLogout はセッションを破棄して /login へリダイレクトする。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.endSession(c)
	}
}

// bindCredentials はフォームを読み込み、メールアドレスとパスワードが揃っているか検証する。
func bindCredentials(c *gin.Context) (credentialsForm, bool) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil || form.Email == "" || form.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return credentialsForm{}, false
	}
	return form, true
}

// startSession はログイン結果のトークンとユーザーID、フォームで送られたメールアドレスでセッションを保存し、
// Cookieを付けて /app へリダイレクトする。
func (s *Server) startSession(c *gin.Context, res notesapi.LoginResult, email string) {
	sess := session.Session{Token: res.Token, Email: email, UserID: res.UserID}

	setCookie, err := s.store.Commit(c.Request.Context(), sess)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, session.ErrInvalidSession) {
			s.logger.Error().Err(err).Msg("ログイン応答にトークンまたはユーザーIDがありません")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Invalid response from the notes service"})
			return
		}
		s.logger.Error().Err(err).Msg("セッションの保存に失敗")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	c.Header("Set-Cookie", setCookie)
	c.Redirect(http.StatusSeeOther, "/app")
}

// endSession はセッションを破棄し、失効Cookieを付けて /login へリダイレクトする。
// 破棄に失敗しても失効Cookieは返す。
func (s *Server) endSession(c *gin.Context) {
	setCookie, err := s.store.Destroy(c.Request.Context(), c.GetHeader("Cookie"))
	if err != nil {
		s.logger.Warn().Err(err).Msg("セッションの破棄に失敗")
	}
	c.Header("Set-Cookie", setCookie)
	c.Redirect(http.StatusSeeOther, "/login")
}
