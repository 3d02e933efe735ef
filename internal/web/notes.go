package web

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/notesweb/internal/notesapi"
	"github.com/nao1215/notesweb/pkg/middleware"
)

// noteForm はノートの作成・編集フォームの入力。
type noteForm struct {
	Title   string `form:"title"`
	Content string `form:"content"`
	// Tags はカンマ区切りのタグ。
	Tags string `form:"tags"`
}

// intentDelete は詳細フォームから削除を指示する値。
const intentDelete = "delete"

// token はセッションのBearerトークンを返す。RequireSessionの後でのみ呼ぶ。
func token(c *gin.Context) string {
	sess, _ := middleware.GetSession(c)
	return sess.Token
}

// handleListNotes はノート一覧を返す。
// クエリの q は検索語、tag はタグとしてNotes APIに渡す。
func (s *Server) handleListNotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		search := c.Query("q")
		tag := c.Query("tag")

		notes, err := s.api.ListNotes(c.Request.Context(), token(c), notesapi.ListQuery{Search: search, Tag: tag})
		if err != nil {
			s.respondNotesError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"notes":  notes,
			"search": search,
			"tag":    tag,
		})
	}
}

// handleNewNotePage は新規作成ページのデータを返す。
func (s *Server) handleNewNotePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	}
}

// handleCreateNote はノートを作成し、作成したノートへリダイレクトする。
func (s *Server) handleCreateNote() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindNoteInput(c)
		if !ok {
			return
		}

		note, err := s.api.CreateNote(c.Request.Context(), token(c), input)
		if err != nil {
			s.respondNotesError(c, err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/app/"+url.PathEscape(note.ID))
	}
}

// handleGetNote はノートと、本文をHTMLに変換した結果を返す。
func (s *Server) handleGetNote() gin.HandlerFunc {
	return func(c *gin.Context) {
		note, err := s.api.GetNote(c.Request.Context(), token(c), c.Param("id"))
		if err != nil {
			s.respondNotesError(c, err)
			return
		}

		html, err := s.renderMarkdown(note.Content)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render note"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"note":        note,
			"contentHtml": html,
		})
	}
}

// handleNoteAction はノート詳細フォームの送信を処理する。
// _intent=delete なら削除して /app へ、それ以外は更新して同じノートへリダイレクトする。
func (s *Server) handleNoteAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		ctx := c.Request.Context()

		if c.PostForm("_intent") == intentDelete {
			if _, err := s.api.DeleteNote(ctx, token(c), id); err != nil {
				s.respondNotesError(c, err)
				return
			}
			c.Redirect(http.StatusSeeOther, "/app")
			return
		}

		input, ok := bindNoteInput(c)
		if !ok {
			return
		}
		if _, err := s.api.UpdateNote(ctx, token(c), id, input); err != nil {
			s.respondNotesError(c, err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/app/"+url.PathEscape(id))
	}
}

// bindNoteInput はフォームを読み込み、タイトルか本文のどちらかがあるか検証する。
// 検証に失敗した場合はNotes APIを呼ばずに400を返す。
func bindNoteInput(c *gin.Context) (notesapi.NoteInput, bool) {
	var form noteForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return notesapi.NoteInput{}, false
	}

	input, err := notesapi.NewNoteInput(form.Title, form.Content, form.Tags)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a title or content"})
		return notesapi.NoteInput{}, false
	}
	return input, true
}
