// Package middleware はGinベースのWebサーバーで使用する共通ミドルウェアを提供する。
//
// セッションの復元と必須化、zerologによるアクセスログ、パニックリカバリ、
// CORS設定を含む。
package middleware
