// Package session はリクエストに紐づく認証セッションを扱う。
//
// セッションは {token, email, userId} の3要素で、すべて揃っている場合だけ有効とみなす。
// 保存方式は Store インターフェースで切り替えられ、署名付きCookieに全体を載せる
// CookieStore と、SQLiteにセッションを保持してCookieにはIDだけを載せる SQLStore がある。
// セッションの更新やローテーションは行わない。
package session
