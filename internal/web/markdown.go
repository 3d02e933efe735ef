package web

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// newMarkdown はノート本文用のMarkdownレンダラーを生成する。
// 生のHTMLは出力しない（goldmarkの既定）。
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
}

// renderMarkdown はMarkdownをHTMLに変換する。
func (s *Server) renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("Markdownの変換に失敗: %w", err)
	}
	return buf.String(), nil
}
