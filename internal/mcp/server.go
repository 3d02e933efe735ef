// Package mcp はNotes APIのゲートウェイクライアントをMCPツールとして公開する。
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nao1215/notesweb/internal/notesapi"
	"github.com/nao1215/notesweb/internal/session"
)

// NotesAPI はツールが使うNotes APIの操作。
type NotesAPI interface {
	ListNotes(ctx context.Context, token string, q notesapi.ListQuery) ([]notesapi.Note, error)
	GetNote(ctx context.Context, token, id string) (notesapi.Note, error)
	CreateNote(ctx context.Context, token string, input notesapi.NoteInput) (notesapi.Note, error)
	UpdateNote(ctx context.Context, token, id string, input notesapi.NoteInput) (notesapi.Note, error)
	DeleteNote(ctx context.Context, token, id string) (notesapi.DeleteResult, error)
}

// tokenKey はツールのコンテキストにBearerトークンを載せるキー。
type tokenKey struct{}

// WithToken はツール呼び出しに使うBearerトークンをコンテキストに載せる。
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// NewServer はノート操作のツールを登録したMCPサーバーを生成する。
func NewServer(api NotesAPI) *server.MCPServer {
	s := server.NewMCPServer(
		"notesweb",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List the signed-in user's notes, optionally filtered by a search term or a tag."),
			mcp.WithString("search",
				mcp.Description("Optional: full-text search term"),
			),
			mcp.WithString("tag",
				mcp.Description("Optional: only return notes carrying this tag"),
			),
		),
		handleListNotes(api),
	)

	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a single note by its ID, including its Markdown content."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
		),
		handleGetNote(api),
	)

	s.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Create a note. At least one of title or content must be non-empty."),
			mcp.WithString("title",
				mcp.Description("Note title"),
			),
			mcp.WithString("content",
				mcp.Description("Note body in Markdown"),
			),
			mcp.WithString("tags",
				mcp.Description("Comma-separated tags, e.g. 'work, ideas'"),
			),
		),
		handleCreateNote(api),
	)

	s.AddTool(
		mcp.NewTool("update_note",
			mcp.WithDescription("Replace the title, content and tags of an existing note."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
			mcp.WithString("title",
				mcp.Description("New note title"),
			),
			mcp.WithString("content",
				mcp.Description("New note body in Markdown"),
			),
			mcp.WithString("tags",
				mcp.Description("Comma-separated tags"),
			),
		),
		handleUpdateNote(api),
	)

	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
		),
		handleDeleteNote(api),
	)

	return s
}

// NewHTTPHandler はMCPサーバーをStreamable HTTPで公開するハンドラを返す。
// Bearerトークンは Authorization ヘッダーから、無ければセッションCookieから取り出す。
func NewHTTPHandler(s *server.MCPServer, store session.Store) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return WithToken(ctx, TokenFromRequest(r, store))
		}),
	)
}

// TokenFromRequest はリクエストからNotes APIのBearerトークンを取り出す。
func TokenFromRequest(r *http.Request, store session.Store) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if sess, ok := store.Load(r.Context(), r.Header.Get("Cookie")); ok {
		return sess.Token
	}
	return ""
}

func handleListNotes(api NotesAPI) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token := tokenFrom(ctx)
		if token == "" {
			return errAuthRequired(), nil
		}

		notes, err := api.ListNotes(ctx, token, notesapi.ListQuery{
			Search: req.GetString("search", ""),
			Tag:    req.GetString("tag", ""),
		})
		if err != nil {
			return apiError("failed to list notes", err), nil
		}
		return jsonResult(notes)
	}
}

func handleGetNote(api NotesAPI) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token := tokenFrom(ctx)
		if token == "" {
			return errAuthRequired(), nil
		}
		id, err := req.RequireString("id")
		if err != nil || id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := api.GetNote(ctx, token, id)
		if err != nil {
			return apiError("failed to get note", err), nil
		}
		return jsonResult(note)
	}
}

func handleCreateNote(api NotesAPI) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token := tokenFrom(ctx)
		if token == "" {
			return errAuthRequired(), nil
		}
		input, err := noteInput(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		note, err := api.CreateNote(ctx, token, input)
		if err != nil {
			return apiError("failed to create note", err), nil
		}
		return jsonResult(note)
	}
}

func handleUpdateNote(api NotesAPI) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token := tokenFrom(ctx)
		if token == "" {
			return errAuthRequired(), nil
		}
		id, err := req.RequireString("id")
		if err != nil || id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		input, err := noteInput(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		note, err := api.UpdateNote(ctx, token, id, input)
		if err != nil {
			return apiError("failed to update note", err), nil
		}
		return jsonResult(note)
	}
}

func handleDeleteNote(api NotesAPI) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token := tokenFrom(ctx)
		if token == "" {
			return errAuthRequired(), nil
		}
		id, err := req.RequireString("id")
		if err != nil || id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		result, err := api.DeleteNote(ctx, token, id)
		if err != nil {
			return apiError("failed to delete note", err), nil
		}
		return jsonResult(result)
	}
}

// noteInput はツール引数からNoteInputを組み立てる。
func noteInput(req mcp.CallToolRequest) (notesapi.NoteInput, error) {
	return notesapi.NewNoteInput(
		req.GetString("title", ""),
		req.GetString("content", ""),
		req.GetString("tags", ""),
	)
}

func errAuthRequired() *mcp.CallToolResult {
	return mcp.NewToolResultError("authentication required: send 'Authorization: Bearer <token>' or a session cookie")
}

// apiError は上流のステータスが分かる場合はそれを含めたエラー結果を返す。
func apiError(msg string, err error) *mcp.CallToolResult {
	var apiErr *notesapi.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s (status %d)", msg, apiErr.Message(), apiErr.StatusCode))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("結果のエンコードに失敗: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
