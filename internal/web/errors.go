package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/notesweb/internal/notesapi"
)

// respondNotesError はノート操作の失敗をレスポンスに変換する。
// 上流の401はトークン失効とみなし、セッションを破棄して再ログインさせる。
func (s *Server) respondNotesError(c *gin.Context, err error) {
	if notesapi.IsUnauthorized(err) {
		s.logger.Info().Str("path", c.Request.URL.Path).Msg("Notes APIが401を返したためセッションを破棄")
		s.endSession(c)
		return
	}
	s.respondUpstreamError(c, err)
}

// respondLoginError はログインの失敗をレスポンスに変換する。
func (s *Server) respondLoginError(c *gin.Context, err error) {
	if notesapi.IsUnauthorized(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	s.respondUpstreamError(c, err)
}

// respondUpstreamError は上流の4xx・5xxのステータスとメッセージをそのまま返す。
// 応答が得られなかった場合や、追従しなかった3xxの場合は502を返す。
func (s *Server) respondUpstreamError(c *gin.Context, err error) {
	var apiErr *notesapi.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest {
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message()})
		return
	}

	_ = c.Error(err)
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Notes APIとの通信に失敗")
	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach the notes service"})
}
