package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/notesweb/internal/config"
	mcpserver "github.com/nao1215/notesweb/internal/mcp"
	"github.com/nao1215/notesweb/internal/notesapi"
	"github.com/nao1215/notesweb/internal/session"
	"github.com/nao1215/notesweb/pkg/middleware"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
)

// NotesAPI はWeb層が使うNotes APIの操作。
type NotesAPI interface {
	mcpserver.NotesAPI
	Login(ctx context.Context, email, password string) (notesapi.LoginResult, error)
	Register(ctx context.Context, email, password string) (notesapi.RegisterResult, error)
}

// Server はノートアプリのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store はセッションの保存方式。
	store session.Store
	// api はNotes APIのゲートウェイクライアント。
	api NotesAPI
	// markdown はノート本文のMarkdownレンダラー。
	markdown goldmark.Markdown
	logger   zerolog.Logger
	// allowedOrigins は/mcpへのクロスオリジンアクセスを許可するオリジン。
	allowedOrigins []string
}

// NewServer は新しいサーバーを生成し、ルーティングを設定する。
func NewServer(cfg config.Config, store session.Store, api NotesAPI, logger zerolog.Logger) *Server {
	router := gin.New()
	// IDに含まれる %2F を区切りとして扱わず、:id の値としてデコードする
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Session(store))

	s := &Server{
		router:         router,
		port:           cfg.Port,
		store:          store,
		api:            api,
		markdown:       newMarkdown(),
		logger:         logger,
		allowedOrigins: cfg.AllowedOrigins,
	}
	s.setupRoutes()

	return s
}

// Addr はリッスンアドレスを返す。
func (s *Server) Addr() string {
	return ":" + s.port
}

// Handler はルーティング済みのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	redirect := middleware.RequireSession(middleware.RedirectToLogin)
	reject := middleware.RequireSession(middleware.RejectUnauthorized)

	s.router.GET("/", s.handleRoot())

	// 認証（セッション不要）
	s.router.GET("/login", s.handleGuestPage())
	s.router.POST("/login", s.handleLogin())
	s.router.GET("/register", s.handleGuestPage())
	s.router.POST("/register", s.handleRegister())
	s.router.POST("/logout", s.handleLogout())

	// ノート（セッション必須）
	s.router.GET("/app", reject, s.handleListNotes())
	s.router.GET("/app/new", redirect, s.handleNewNotePage())
	s.router.POST("/app/new", redirect, s.handleCreateNote())
	s.router.GET("/app/:id", redirect, s.handleGetNote())
	s.router.POST("/app/:id", redirect, s.handleNoteAction())

	// MCP（Bearerトークン、無ければセッションCookie）
	mcpHandler := gin.WrapH(mcpserver.NewHTTPHandler(mcpserver.NewServer(s.api), s.store))
	mcp := s.router.Group("/mcp", middleware.CORS(s.allowedOrigins))
	{
		mcp.POST("", mcpHandler)
		mcp.GET("", mcpHandler)
		mcp.DELETE("", mcpHandler)
		mcp.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notesweb"})
	})
}

// handleRoot はセッションの有無に応じて /app か /login へリダイレクトする。
func (s *Server) handleRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetSession(c); ok {
			c.Redirect(http.StatusSeeOther, "/app")
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
	}
}
