package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LJTian/NewsPulse/internal/collector"
	"github.com/LJTian/NewsPulse/internal/pipeline"
	"github.com/LJTian/NewsPulse/internal/storage"
	"github.com/gin-gonic/gin"
)

type cachedStage struct {
	rs      storage.ResultSet
	savedAt time.Time
}

type stubCache map[storage.Stage]cachedStage

func (s stubCache) CachedStage(_ context.Context, stage storage.Stage) (storage.ResultSet, time.Time, bool) {
	e, ok := s[stage]
	return e.rs, e.savedAt, ok
}

type stubRunner struct {
	report *pipeline.Report
	err    error
}

func (s stubRunner) Run(context.Context) (*pipeline.Report, error) {
	return s.report, s.err
}

type stageResponse struct {
	Code string            `json:"code"`
	Data storage.ResultSet `json:"data"`
}

func newTestRouter(t *testing.T, files *storage.FileStore, cache StageCache, runner Runner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewServer(files, cache, runner).RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, storage.NewFileStore(t.TempDir()), nil, nil)
	w := doRequest(r, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestGetStageFromFile(t *testing.T) {
	files := storage.NewFileStore(t.TempDir())
	items := []collector.NewsItem{{ID: "1", Title: "Projeto aprovado"}}
	if err := files.Save(context.Background(), storage.StageRaw, storage.NewResultSet(items, "aviso")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	r := newTestRouter(t, files, nil, nil)
	w := doRequest(r, http.MethodGet, "/api/v1/stages/raw")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	var resp stageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.News) != 1 || resp.Data.Warning != "aviso" {
		t.Fatalf("unexpected stage data: %+v", resp.Data)
	}

	if w := doRequest(r, http.MethodGet, "/api/v1/stages/sentiment"); w.Code != http.StatusNotFound {
		t.Fatalf("missing stage file should be 404, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/v1/stages/export"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown stage should be 404, got %d", w.Code)
	}
}

func TestGetStagePrefersCache(t *testing.T) {
	cache := stubCache{
		storage.StageSentiment: {
			rs:      storage.NewResultSet([]collector.NewsItem{{ID: "a"}, {ID: "b"}}, ""),
			savedAt: time.Now(),
		},
	}
	r := newTestRouter(t, storage.NewFileStore(t.TempDir()), cache, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/stages/sentiment")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp stageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.News) != 2 {
		t.Fatalf("expected cached result set, got %+v", resp.Data)
	}
}

func TestGetStageSkipsStaleCache(t *testing.T) {
	files := storage.NewFileStore(t.TempDir())
	fresh := []collector.NewsItem{{ID: "novo"}}
	if err := files.Save(context.Background(), storage.StageLimited, storage.NewResultSet(fresh, "")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	old := storage.NewResultSet([]collector.NewsItem{{ID: "antigo"}, {ID: "antigo2"}}, "")

	// 快照早于文件：上一次执行的镜像，读文件
	stale := stubCache{storage.StageLimited: {rs: old, savedAt: time.Now().Add(-time.Hour)}}
	var resp stageResponse
	w := doRequest(newTestRouter(t, files, stale, nil), http.MethodGet, "/api/v1/stages/limited")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.News) != 1 || resp.Data.News[0].ID != "novo" {
		t.Fatalf("stale snapshot should be ignored, got %+v", resp.Data)
	}

	// 快照晚于文件：读快照
	current := stubCache{storage.StageLimited: {rs: old, savedAt: time.Now().Add(time.Hour)}}
	resp = stageResponse{}
	w = doRequest(newTestRouter(t, files, current, nil), http.MethodGet, "/api/v1/stages/limited")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.News) != 2 {
		t.Fatalf("newer snapshot should be served, got %+v", resp.Data)
	}
}

func TestTriggerRun(t *testing.T) {
	files := storage.NewFileStore(t.TempDir())

	ok := newTestRouter(t, files, nil, stubRunner{report: &pipeline.Report{RunID: "r1", Limited: 3}})
	if w := doRequest(ok, http.MethodPost, "/api/v1/runs"); w.Code != http.StatusOK {
		t.Fatalf("run status = %d", w.Code)
	}

	busy := newTestRouter(t, files, nil, stubRunner{err: pipeline.ErrRunInProgress})
	if w := doRequest(busy, http.MethodPost, "/api/v1/runs"); w.Code != http.StatusConflict {
		t.Fatalf("concurrent run should be 409, got %d", w.Code)
	}

	failing := newTestRouter(t, files, nil, stubRunner{err: errors.New("disk full")})
	if w := doRequest(failing, http.MethodPost, "/api/v1/runs"); w.Code != http.StatusInternalServerError {
		t.Fatalf("failed run should be 500, got %d", w.Code)
	}

	// 未配置 runner 时不注册该路由
	none := newTestRouter(t, files, nil, nil)
	if w := doRequest(none, http.MethodPost, "/api/v1/runs"); w.Code != http.StatusNotFound {
		t.Fatalf("runs route should not exist without runner, got %d", w.Code)
	}
}
