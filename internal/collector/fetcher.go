package collector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NewsItem 是流水线中唯一的实体：由 Parser 从一条 feed entry 创建，
// 之后各阶段只做拷贝并补充字段，已落盘的数据不再原地修改。
type NewsItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Published   *string `json:"published"`
	Source      *string `json:"source"`
	Description string  `json:"description"`

	// 以下两部分在 raw/limited 阶段为 nil，JSON 中不会出现对应字段
	*Enrichment
	*Sentiment
}

// Enrichment 在 processed 阶段写入
type Enrichment struct {
	ArticleText string   `json:"article_text"`
	TextClean   string   `json:"text_clean"`
	Tokens      []string `json:"tokens"`
}

// Sentiment 在 sentiment 阶段写入
type Sentiment struct {
	SentimentScore int    `json:"sentiment_score"`
	SentimentLabel string `json:"sentiment_label"`
}

const (
	// DefaultFeedURLTemplate Google News 搜索 RSS，{query} 为占位符
	DefaultFeedURLTemplate = "https://news.google.com/rss/search?q={query}&hl=pt-BR&gl=BR&ceid=BR:pt-419"

	feedMaxResponseBytes = 8 << 20 // 8MB
)

// FetchError 表示某个查询词的 feed 拉取最终失败（重试耗尽）
type FetchError struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "fetch failed"
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// BuildQueryURL 将查询词转义后代入模板
func BuildQueryURL(template, query string) string {
	if template == "" {
		template = DefaultFeedURLTemplate
	}
	return strings.ReplaceAll(template, "{query}", url.QueryEscape(query))
}

// FeedFetcher 按查询词拉取 RSS 原始内容，失败时同步重试
type FeedFetcher struct {
	client    *http.Client
	template  string
	retries   int
	userAgent string
}

func NewFeedFetcher(template string, timeout time.Duration, retries int, userAgent string) *FeedFetcher {
	if retries < 0 {
		retries = 0
	}
	return &FeedFetcher{
		client:    &http.Client{Timeout: timeout},
		template:  template,
		retries:   retries,
		userAgent: userAgent,
	}
}

// Fetch 最多尝试 1+retries 次；所有错误都以 *FetchError 返回
func (f *FeedFetcher) Fetch(ctx context.Context, query string) ([]byte, error) {
	feedURL := BuildQueryURL(f.template, query)

	var lastErr *FetchError
	for attempt := 0; attempt <= f.retries; attempt++ {
		body, err := f.fetchOnce(ctx, feedURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		lastErr.Query = query
		log.Printf("fetch feed %q attempt %d/%d error: %v", query, attempt+1, f.retries+1, err)
	}
	return nil, lastErr
}

func (f *FeedFetcher) fetchOnce(ctx context.Context, feedURL string) ([]byte, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, feedMaxResponseBytes))
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
