// Package web はノートアプリのWeb層を提供する。
//
// ページのローダーはページデータをJSONで返し、フォームのアクションはリダイレクトを返す。
// ノートはすべて外部のNotes APIが所有しており、この層はセッションから取り出した
// Bearerトークンを付けて操作を中継するだけで、ノートを永続化しない。
//
// 上流が401を返した場合はトークンが失効したものとみなし、セッションを破棄して
// ログインページへリダイレクトする。
package web
