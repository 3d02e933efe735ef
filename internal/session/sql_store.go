package session

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/notesweb/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLStore はセッションをSQLiteに保持し、CookieにはランダムなセッションIDだけを載せるStore。
type SQLStore struct {
	db   *sql.DB
	opts CookieOptions
	now  func() time.Time
}

// OpenSQLite はセッション用のSQLiteデータベースを開く。
// 親ディレクトリが無ければ作成する。
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("データディレクトリの作成に失敗: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	return db, nil
}

// NewSQLStore は新しいSQLStoreを生成し、スキーマを適用する。
func NewSQLStore(ctx context.Context, db *sql.DB, opts CookieOptions) (*SQLStore, error) {
	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("セッションスキーマの適用に失敗: %w", err)
	}
	return &SQLStore{
		db:   db,
		opts: opts.withDefaults(),
		now:  time.Now,
	}, nil
}

// Commit はセッションを新しいIDで保存し、IDを載せたSet-Cookieの値を返す。
func (s *SQLStore) Commit(ctx context.Context, sess Session) (string, error) {
	if !sess.Valid() {
		return "", ErrInvalidSession
	}

	id := uuid.New().String()
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, email, user_id, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, sess.Token, sess.Email, sess.UserID, now.Unix(), now.Add(s.opts.MaxAge).Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("セッションの保存に失敗: %w", err)
	}
	return s.opts.setCookie(id, now), nil
}

// Load はCookieのセッションIDで行を引き、有効なセッションを返す。
// 未知・期限切れ・欠落のある行は false を返す。
func (s *SQLStore) Load(ctx context.Context, cookieHeader string) (Session, bool) {
	id, ok := s.sessionID(cookieHeader)
	if !ok {
		return Session{}, false
	}

	var (
		sess      Session
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, email, user_id, expires_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.Token, &sess.Email, &sess.UserID, &expiresAt)
	if err != nil {
		return Session{}, false
	}
	if s.now().Unix() >= expiresAt || !sess.Valid() {
		return Session{}, false
	}
	return sess, true
}

// Destroy はセッション行を削除し、Cookieを失効させるSet-Cookieの値を返す。
// 削除に失敗してもSet-Cookieの値は返す。
func (s *SQLStore) Destroy(ctx context.Context, cookieHeader string) (string, error) {
	expired := s.opts.expiredCookie()

	id, ok := s.sessionID(cookieHeader)
	if !ok {
		return expired, nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return expired, fmt.Errorf("セッションの削除に失敗: %w", err)
	}
	return expired, nil
}

// DeleteExpired は期限切れのセッション行を削除し、削除件数を返す。
func (s *SQLStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return n, nil
}

// sessionID はCookieヘッダーからUUID形式のセッションIDを取り出す。
func (s *SQLStore) sessionID(cookieHeader string) (string, bool) {
	value, ok := cookieValue(cookieHeader, s.opts.Name)
	if !ok {
		return "", false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
