package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LJTian/NewsPulse/internal/storage"
	"github.com/gin-gonic/gin"
)

func TestBasicAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BasicAuth("editor", "segredo"))
	NewServer(storage.NewFileStore(t.TempDir()), nil, nil).RegisterRoutes(r)

	if w := doRequest(r, http.MethodGet, "/health"); w.Code != http.StatusOK {
		t.Fatalf("health should skip auth, got %d", w.Code)
	}

	w := doRequest(r, http.MethodGet, "/api/v1/stages/raw")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing credentials should be 401, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("401 should carry a WWW-Authenticate challenge")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stages/raw", nil)
	req.SetBasicAuth("editor", "errada")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password should be 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stages/raw", nil)
	req.SetBasicAuth("editor", "segredo")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	// 认证通过，阶段文件尚不存在
	if w.Code != http.StatusNotFound {
		t.Fatalf("authorized request should reach the handler, got %d", w.Code)
	}
}
