// Package httpclient は外部APIとJSONで通信するHTTPクライアントを提供する。
//
// Notes APIへのすべての呼び出しはこのクライアントを経由する。
// 2xx以外のレスポンスは *StatusError として呼び出し元に返し、
// リトライやキャッシュは行わない。
package httpclient
