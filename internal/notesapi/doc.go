// Package notesapi は外部のNotes APIに対するゲートウェイクライアントを提供する。
//
// ログイン・登録とノートのCRUDを1回ずつのHTTP往復に変換し、
// 2xx以外の応答は操作の種類と上流のステータスを持つ *Error として返す。
// リトライやキャッシュは行わない。
package notesapi
