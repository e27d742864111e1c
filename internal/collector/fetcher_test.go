package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuildQueryURLEscapesQuery(t *testing.T) {
	got := BuildQueryURL("", "Inteligência Artificial Piauí")
	want := "https://news.google.com/rss/search?q=Intelig%C3%AAncia+Artificial+Piau%C3%AD&hl=pt-BR&gl=BR&ceid=BR:pt-419"
	if got != want {
		t.Fatalf("BuildQueryURL = %q, want %q", got, want)
	}

	custom := BuildQueryURL("http://localhost/rss?q={query}", "a&b")
	if custom != "http://localhost/rss?q=a%26b" {
		t.Fatalf("custom template not escaped: %q", custom)
	}
}

func TestFeedFetcherRetriesOnceThenFails(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFeedFetcher(srv.URL+"/rss?q={query}", time.Second, 1, "test-agent")
	body, err := f.Fetch(context.Background(), "sia")
	if err == nil {
		t.Fatalf("expected error, got body %q", body)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected 2 attempts (initial + 1 retry), got %d", got)
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.StatusCode != http.StatusInternalServerError || fe.Query != "sia" {
		t.Fatalf("unexpected FetchError: %+v", fe)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error should mention status: %q", err.Error())
	}
}

func TestFeedFetcherRecoversOnRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("missing user agent header: %q", r.Header.Get("User-Agent"))
		}
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<rss></rss>"))
	}))
	defer srv.Close()

	f := NewFeedFetcher(srv.URL+"?q={query}", time.Second, 1, "test-agent")
	body, err := f.Fetch(context.Background(), "sia")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(body) != "<rss></rss>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFeedFetcherTransportErrorWithoutRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close() // 关闭后再请求，必然是连接错误

	f := NewFeedFetcher(addr+"?q={query}", time.Second, 0, "")
	_, err := f.Fetch(context.Background(), "sia")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.StatusCode != 0 || fe.Err == nil {
		t.Fatalf("transport failure should carry the underlying error: %+v", fe)
	}
	if fe.Error() == "" {
		t.Fatalf("FetchError message should not be empty")
	}
}
