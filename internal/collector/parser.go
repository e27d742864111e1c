package collector

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/mmcdole/gofeed/rss"
)

// ParseError 表示 feed 内容无法解析
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse feed: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewsID 由 title+link 计算指纹；title 与 link 都为空时所有条目共享同一个 id，
// 这反映的是源数据质量，这里不做特殊处理
func NewsID(title, link string) string {
	sum := md5.Sum([]byte(title + link))
	return hex.EncodeToString(sum[:])
}

// ParseFeed 把 RSS 内容解析为 NewsItem 列表，limit > 0 时只保留 feed 顺序中的前 limit 条
func ParseFeed(raw []byte, limit int) ([]NewsItem, error) {
	fp := &rss.Parser{}
	feed, err := fp.Parse(bytes.NewReader(raw))
	if err != nil {
		return []NewsItem{}, &ParseError{Err: err}
	}

	entries := feed.Items
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]NewsItem, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		out = append(out, convertEntry(entry))
	}
	return out, nil
}

func convertEntry(entry *rss.Item) NewsItem {
	item := NewsItem{
		ID:          NewsID(entry.Title, entry.Link),
		Title:       entry.Title,
		Link:        entry.Link,
		Description: entry.Description,
	}
	if entry.PubDate != "" {
		published := entry.PubDate
		item.Published = &published
	}
	if entry.Source != nil {
		if name := strings.TrimSpace(entry.Source.Title); name != "" {
			item.Source = &name
		}
	}
	return item
}
