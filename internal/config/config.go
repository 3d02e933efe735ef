// Package config は起動時に一度だけ環境変数から設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingAPIURL はNOTES_API_URLが設定されていないことを表す。
var ErrMissingAPIURL = errors.New("NOTES_API_URLが設定されていません")

// DevSessionSecret はSESSION_SECRET未設定時に使う開発用の署名鍵。
const DevSessionSecret = "dev-secret-key"

// セッションの保存方式。
const (
	SessionStoreCookie = "cookie"
	SessionStoreSQLite = "sqlite"
)

// Config はWebサーバーの設定。
type Config struct {
	// NotesAPIURL はNotes APIのベースURL。末尾のスラッシュは取り除かれる。
	NotesAPIURL string
	// Port はサーバーのリッスンポート。
	Port string
	// SessionSecret はセッションCookieの署名鍵。
	SessionSecret string
	// SessionStore はセッションの保存方式（cookie または sqlite）。
	SessionStore string
	// SessionDBPath はsqlite方式で使うデータベースファイルのパス。
	SessionDBPath string
	// CookieSecure はセッションCookieにSecure属性を付与するかどうか。
	CookieSecure bool
	// AllowedOrigins は/mcpへのクロスオリジンアクセスを許可するオリジン。
	AllowedOrigins []string
	// LogLevel はzerologのログレベル名。
	LogLevel string
}

// UsesDevSecret は開発用の署名鍵のまま起動しようとしている場合にtrueを返す。
func (c Config) UsesDevSecret() bool {
	return c.SessionSecret == DevSessionSecret
}

// Load はカレントディレクトリの.envを読み込んだうえで、環境変数から設定を組み立てる。
// .envが無い場合はそのまま環境変数だけを使う。
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv はgetenvで与えられた環境から設定を組み立てる。
func FromEnv(getenv func(string) string) (Config, error) {
	apiURL, err := parseAPIURL(getenv("NOTES_API_URL"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		NotesAPIURL:    apiURL,
		Port:           getEnvOr(getenv, "PORT", "8080"),
		SessionSecret:  getEnvOr(getenv, "SESSION_SECRET", DevSessionSecret),
		SessionStore:   strings.ToLower(getEnvOr(getenv, "SESSION_STORE", SessionStoreCookie)),
		SessionDBPath:  getEnvOr(getenv, "SESSION_DB_PATH", "./data/sessions.db"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS")),
		LogLevel:       getEnvOr(getenv, "LOG_LEVEL", "info"),
	}

	switch cfg.SessionStore {
	case SessionStoreCookie, SessionStoreSQLite:
	default:
		return Config{}, fmt.Errorf("SESSION_STOREの値が不正です: %q", cfg.SessionStore)
	}

	if v := getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("COOKIE_SECUREの値が不正です: %w", err)
		}
		cfg.CookieSecure = secure
	}

	return cfg, nil
}

// parseAPIURL はNotes APIのベースURLを検証し、末尾のスラッシュを取り除く。
func parseAPIURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingAPIURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("NOTES_API_URLの値が不正です: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("NOTES_API_URLはhttp(s)の絶対URLである必要があります: %q", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// getEnvOr は環境変数の値を返す。未設定の場合はデフォルト値を返す。
func getEnvOr(getenv func(string) string, key, defaultValue string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// splitList はカンマ区切りの値を空要素を除いて分割する。
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
