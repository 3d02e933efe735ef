package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TestLogger はLoggerミドルウェアを検証する。
func TestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		err       error
		wantLevel string
	}{
		{name: "2xxはinfoで記録されること", status: http.StatusOK, wantLevel: "info"},
		{name: "3xxはinfoで記録されること", status: http.StatusSeeOther, wantLevel: "info"},
		{name: "4xxはwarnで記録されること", status: http.StatusBadRequest, wantLevel: "warn"},
		{name: "5xxはerrorで記録されエラー内容が含まれること", status: http.StatusBadGateway, err: errors.New("upstream down"), wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			router := gin.New()
			router.Use(Logger(zerolog.New(&buf)))
			router.GET("/app", func(c *gin.Context) {
				if tt.err != nil {
					_ = c.Error(tt.err)
				}
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app?q=secret", nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("ログのパースに失敗: %v (%s)", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["method"] != http.MethodGet {
				t.Errorf("method = %v, want GET", entry["method"])
			}
			// クエリ文字列はログに含めない
			if entry["path"] != "/app" {
				t.Errorf("path = %v, want /app", entry["path"])
			}
			if got, ok := entry["status"].(float64); !ok || int(got) != tt.status {
				t.Errorf("status = %v, want %d", entry["status"], tt.status)
			}
			if _, ok := entry["latency"]; !ok {
				t.Error("latencyが記録されていない")
			}
			if tt.err != nil && entry["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %q", entry["error"], tt.err.Error())
			}
		})
	}
}
