// ノートアプリのWebサーバーのエントリポイント。
// セッションを管理し、ノートの操作を外部のNotes APIへ中継する。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/notesweb/internal/config"
	"github.com/nao1215/notesweb/internal/notesapi"
	"github.com/nao1215/notesweb/internal/session"
	"github.com/nao1215/notesweb/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// sessionCleanupInterval は期限切れセッションを掃除する間隔。
const sessionCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}

	logger := newLogger(cfg.LogLevel)
	log.Logger = logger

	if cfg.UsesDevSecret() {
		logger.Warn().Msg("SESSION_SECRETが未設定のため開発用の署名鍵を使用します。本番環境では必ず設定してください")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("セッションストアの初期化に失敗")
	}
	defer closeStore()

	server := web.NewServer(cfg, store, notesapi.New(cfg.NotesAPIURL), logger)
	srv := &http.Server{
		Addr:              server.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("サーバーを停止します")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("サーバーの停止に失敗")
		}
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("notes_api", cfg.NotesAPIURL).
		Str("session_store", cfg.SessionStore).
		Msg("Webサーバーを起動します")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Webサーバーの起動に失敗")
	}
	logger.Info().Msg("サーバーを停止しました")
}

// newLogger はログレベル名からルートロガーを生成する。
// 不明なレベル名はinfoとして扱う。
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("service", "notesweb").Logger()
}

// newSessionStore は設定に応じたセッションストアと、その後始末を返す。
// sqlite方式では期限切れセッションを定期的に削除する。
func newSessionStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (session.Store, func(), error) {
	opts := session.DefaultCookieOptions()
	opts.Secure = cfg.CookieSecure

	if cfg.SessionStore != config.SessionStoreSQLite {
		codec, err := session.NewCodec(cfg.SessionSecret, opts)
		if err != nil {
			return nil, nil, err
		}
		return session.NewCookieStore(codec), func() {}, nil
	}

	db, err := session.OpenSQLite(cfg.SessionDBPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := session.NewSQLStore(ctx, db, opts)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("SQLiteセッションストアの生成に失敗: %w", err)
	}

	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.DeleteExpired(ctx)
				if err != nil {
					logger.Warn().Err(err).Msg("期限切れセッションの削除に失敗")
					continue
				}
				logger.Debug().Int64("deleted", n).Msg("期限切れセッションを削除")
			}
		}
	}()

	return store, func() { db.Close() }, nil
}
