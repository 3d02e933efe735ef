package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// RawQuery はクエリ文字列。
	RawQuery string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// testPayload はテスト用のリクエスト/レスポンスペイロード。
type testPayload struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// newRecordingServer はリクエストを記録し、固定のJSONを返すテストサーバーを生成する。
func newRecordingServer(t *testing.T, status int, resp any) (*httptest.Server, *testRequest) {
	t.Helper()

	received := &testRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Method = r.Method
		received.Path = r.URL.Path
		received.RawQuery = r.URL.RawQuery
		received.Body, _ = io.ReadAll(r.Body)
		received.Headers = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if resp != nil {
			_ = json.NewEncoder(w).Encode(resp)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, received
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("クライアントが正常に生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if client == nil {
			t.Fatal("New()がnilを返した")
		}
		if client.baseURL != "http://localhost:8080" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:8080")
		}
		if client.httpClient == nil {
			t.Fatal("httpClientがnil")
		}
	})

	t.Run("クライアント側のタイムアウトが設定されていないこと", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if client.httpClient.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", client.httpClient.Timeout)
		}
	})

	t.Run("WithHTTPClientで内部クライアントを差し替えられること", func(t *testing.T) {
		t.Parallel()

		hc := &http.Client{}
		client := New("http://localhost:8080", WithHTTPClient(hc))
		if client.httpClient != hc {
			t.Error("httpClientが差し替えられていない")
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("正常にPOSTリクエストを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "response", Value: 200})

		client := New(ts.URL)
		var result testPayload
		err := client.PostJSON(context.Background(), "/auth/login", testPayload{Name: "request", Value: 100}, &result)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/auth/login" {
			t.Errorf("Path = %q, want %q", received.Path, "/auth/login")
		}

		var sentBody testPayload
		if err := json.Unmarshal(received.Body, &sentBody); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sentBody.Name != "request" || sentBody.Value != 100 {
			t.Errorf("sent body = %+v, want {request 100}", sentBody)
		}
		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		if result.Name != "response" || result.Value != 200 {
			t.Errorf("result = %+v, want {response 200}", result)
		}
	})

	t.Run("サーバーが400エラーを返した場合にStatusErrorが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad request"}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload
		err := client.PostJSON(context.Background(), "/notes", testPayload{Name: "bad"}, &result)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("エラーの型 = %T, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusBadRequest {
			t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusBadRequest)
		}
		if statusErr.Body != `{"error":"bad request"}` {
			t.Errorf("Body = %q", statusErr.Body)
		}
	})

	t.Run("resultがnilの場合でもエラーにならないこと", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusCreated, map[string]string{"status": "created"})

		client := New(ts.URL)
		if err := client.PostJSON(context.Background(), "/notes", testPayload{Name: "no-result"}, nil); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusOK, testPayload{Name: "response"})

		client := New(ts.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // 即座にキャンセル

		var result testPayload
		if err := client.PostJSON(ctx, "/notes", testPayload{}, &result); err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestPutJSON はPutJSON関数を検証する。
func TestPutJSON(t *testing.T) {
	t.Parallel()

	ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "updated", Value: 2})

	client := New(ts.URL)
	var result testPayload
	if err := client.PutJSON(context.Background(), "/notes/n1", testPayload{Name: "update"}, &result); err != nil {
		t.Fatalf("PutJSON()でエラーが発生: %v", err)
	}
	if received.Method != http.MethodPut {
		t.Errorf("Method = %q, want %q", received.Method, http.MethodPut)
	}
	if received.Path != "/notes/n1" {
		t.Errorf("Path = %q, want %q", received.Path, "/notes/n1")
	}
	if result.Name != "updated" {
		t.Errorf("result.Name = %q, want %q", result.Name, "updated")
	}
}

// TestGetJSON はGetJSON関数を検証する。
func TestGetJSON(t *testing.T) {
	t.Parallel()

	t.Run("クエリ文字列付きのGETリクエストを送信できること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "get-response", Value: 42})

		client := New(ts.URL)
		var result testPayload
		if err := client.GetJSON(context.Background(), "/notes?search=foo", &result); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}

		if received.Method != http.MethodGet {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodGet)
		}
		if received.Path != "/notes" {
			t.Errorf("Path = %q, want %q", received.Path, "/notes")
		}
		if received.RawQuery != "search=foo" {
			t.Errorf("RawQuery = %q, want %q", received.RawQuery, "search=foo")
		}
		if result.Value != 42 {
			t.Errorf("result.Value = %d, want %d", result.Value, 42)
		}
	})

	t.Run("GETリクエストにボディとContent-Typeが含まれないこと", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "ok"})

		client := New(ts.URL)
		var result testPayload
		if err := client.GetJSON(context.Background(), "/notes", &result); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if len(received.Body) != 0 {
			t.Errorf("GETリクエストにボディが含まれている: %q", string(received.Body))
		}
		if got := received.Headers.Get("Content-Type"); got != "" {
			t.Errorf("Content-Type = %q, want empty", got)
		}
	})

	t.Run("サーバーが404を返した場合にステータスを保持したエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts, _ := newRecordingServer(t, http.StatusNotFound, map[string]string{"error": "not found"})

		client := New(ts.URL)
		var result testPayload
		err := client.GetJSON(context.Background(), "/notes/missing", &result)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("エラーの型 = %T, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("不正なJSONレスポンスでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{invalid json}`))
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload
		err := client.GetJSON(context.Background(), "/notes", &result)
		if err == nil {
			t.Fatal("GetJSON()がエラーを返すべきだが、nilが返った")
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			t.Error("デコード失敗がStatusErrorとして返された")
		}
	})

	t.Run("接続できないサーバーに対してエラーが返ること", func(t *testing.T) {
		t.Parallel()

		// 存在しないサーバーに接続を試みる
		client := New("http://127.0.0.1:1")
		var result testPayload
		if err := client.GetJSON(context.Background(), "/notes", &result); err == nil {
			t.Fatal("GetJSON()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestDeleteJSON はDeleteJSON関数を検証する。
func TestDeleteJSON(t *testing.T) {
	t.Parallel()

	ts, received := newRecordingServer(t, http.StatusNoContent, nil)

	client := New(ts.URL)
	if err := client.DeleteJSON(context.Background(), "/notes/n1", nil); err != nil {
		t.Fatalf("DeleteJSON()でエラーが発生: %v", err)
	}
	if received.Method != http.MethodDelete {
		t.Errorf("Method = %q, want %q", received.Method, http.MethodDelete)
	}
}

// TestWithBearerToken はWithBearerToken関数を検証する。
func TestWithBearerToken(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストのトークンがBearerヘッダーとして送信されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "ok"})

		client := New(ts.URL)
		ctx := WithBearerToken(context.Background(), "tok")
		var result testPayload
		if err := client.GetJSON(ctx, "/notes", &result); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if got := received.Headers.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok")
		}
	})

	t.Run("空のトークンでは空のAuthorizationヘッダーが送信されること", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "ok"})

		client := New(ts.URL)
		ctx := WithBearerToken(context.Background(), "")
		var result testPayload
		if err := client.GetJSON(ctx, "/notes", &result); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}

		// 空文字列でもヘッダーは設定される
		if _, ok := received.Headers["Authorization"]; !ok {
			t.Error("空のトークンでもAuthorizationヘッダーが設定されるべき")
		}
		if got := received.Headers.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty string", got)
		}
	})

	t.Run("WithBearerTokenが設定されていない場合Authorizationヘッダーが無いこと", func(t *testing.T) {
		t.Parallel()

		ts, received := newRecordingServer(t, http.StatusOK, testPayload{Name: "ok"})

		client := New(ts.URL)
		var result testPayload
		if err := client.PostJSON(context.Background(), "/auth/login", testPayload{}, &result); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if _, ok := received.Headers["Authorization"]; ok {
			t.Error("未認証の呼び出しにAuthorizationヘッダーが含まれている")
		}
	})
}

// TestPostJSON_SerializationError はシリアライズ不可能なボディでエラーが返ることを検証する。
func TestPostJSON_SerializationError(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := New(ts.URL)
	// json.Marshalでエラーになるチャネル型を渡す
	body := make(chan int)
	var result testPayload

	if err := client.PostJSON(context.Background(), "/notes", body, &result); err == nil {
		t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
	}
	if calls != 0 {
		t.Errorf("シリアライズ失敗時にリクエストが送信された: calls=%d", calls)
	}
}

// TestEmptyResponseBody はボディの無い2xx応答の扱いを検証する。
func TestEmptyResponseBody(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		ts, _ := newRecordingServer(t, status, nil)

		result := testPayload{Name: "unchanged"}
		if err := New(ts.URL).DeleteJSON(context.Background(), "/notes/n1", &result); err != nil {
			t.Fatalf("status=%d: DeleteJSON()でエラーが発生: %v", status, err)
		}
		if result.Name != "unchanged" {
			t.Errorf("status=%d: result = %+v, 変更されるべきではない", status, result)
		}
	}
}
