package notesapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/nao1215/notesweb/pkg/httpclient"
)

// Client はNotes APIへのゲートウェイクライアント。
// 内部の呼び出しをNotes APIのHTTP契約に変換する唯一の地点。
type Client struct {
	http *httpclient.Client
}

// New は新しいゲートウェイクライアントを生成する。
// baseURLは起動時に解決済みの設定値を渡す。
func New(baseURL string, opts ...httpclient.Option) *Client {
	return &Client{http: httpclient.New(baseURL, opts...)}
}

// credentials はログイン・登録リクエストのボディ。
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login はメールアドレスとパスワードで認証し、Bearerトークンを取得する。
// 上流が2xx以外を返した場合は常に401のErrorを返す。
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	err := c.http.PostJSON(ctx, "/auth/login", credentials{Email: email, Password: password}, &result)
	if err != nil {
		apiErr := &Error{Kind: KindUnauthorized, Err: err}
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			apiErr.StatusCode = http.StatusUnauthorized
		}
		return LoginResult{}, apiErr
	}
	return result, nil
}

// Register は新しいユーザーを登録する。失敗時は上流のステータスを保持する。
func (c *Client) Register(ctx context.Context, email, password string) (RegisterResult, error) {
	var result RegisterResult
	if err := c.http.PostJSON(ctx, "/auth/register", credentials{Email: email, Password: password}, &result); err != nil {
		return RegisterResult{}, wrap(KindRegistrationFailed, err)
	}
	return result, nil
}

// ListNotes はノート一覧を取得する。検索語とタグは空でなければクエリに付与する。
func (c *Client) ListNotes(ctx context.Context, token string, q ListQuery) ([]Note, error) {
	path := "/notes"
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	notes := []Note{}
	if err := c.http.GetJSON(httpclient.WithBearerToken(ctx, token), path, &notes); err != nil {
		return nil, wrap(KindFetchFailed, err)
	}
	return notes, nil
}

// GetNote は指定IDのノートを取得する。
func (c *Client) GetNote(ctx context.Context, token, id string) (Note, error) {
	var note Note
	if err := c.http.GetJSON(httpclient.WithBearerToken(ctx, token), notePath(id), &note); err != nil {
		return Note{}, wrap(KindFetchFailed, err)
	}
	return note, nil
}

// CreateNote はノートを作成する。
func (c *Client) CreateNote(ctx context.Context, token string, input NoteInput) (Note, error) {
	var note Note
	if err := c.http.PostJSON(httpclient.WithBearerToken(ctx, token), "/notes", input, &note); err != nil {
		return Note{}, wrap(KindCreateFailed, err)
	}
	return note, nil
}

// UpdateNote は指定IDのノートを更新する。
func (c *Client) UpdateNote(ctx context.Context, token, id string, input NoteInput) (Note, error) {
	var note Note
	if err := c.http.PutJSON(httpclient.WithBearerToken(ctx, token), notePath(id), input, &note); err != nil {
		return Note{}, wrap(KindUpdateFailed, err)
	}
	return note, nil
}

// DeleteNote は指定IDのノートを削除する。
// 上流のレスポンスボディは使わず、成功時は常に Success=true を返す。
func (c *Client) DeleteNote(ctx context.Context, token, id string) (DeleteResult, error) {
	if err := c.http.DeleteJSON(httpclient.WithBearerToken(ctx, token), notePath(id), nil); err != nil {
		return DeleteResult{}, wrap(KindDeleteFailed, err)
	}
	return DeleteResult{Success: true}, nil
}

// notePath はIDをパーセントエンコードしてノートのパスを組み立てる。
func notePath(id string) string {
	return "/notes/" + url.PathEscape(id)
}
