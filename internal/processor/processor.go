package processor

import (
	"log"
	"strings"

	"github.com/LJTian/NewsPulse/internal/collector"
)

// Extractor 根据链接返回正文文本，失败时返回空串
type Extractor interface {
	Extract(link string) string
}

// Processor 负责正文补全、清洗分词以及情感打分两个阶段
type Processor struct {
	extractor Extractor
}

// NewProcessor extractor 为 nil 时跳过正文抓取，直接使用 description/title 兜底
func NewProcessor(extractor Extractor) *Processor {
	return &Processor{extractor: extractor}
}

// Process 为每条新闻生成 article_text / text_clean / tokens，返回新的切片，不修改入参
func (p *Processor) Process(items []collector.NewsItem) []collector.NewsItem {
	out := make([]collector.NewsItem, 0, len(items))
	extracted := 0

	for i, it := range items {
		articleText := ""
		if p.extractor != nil {
			articleText = p.extractor.Extract(it.Link)
			if strings.TrimSpace(articleText) != "" {
				extracted++
			}
			log.Printf("[%d/%d] extract %s: %d chars", i+1, len(items), it.Link, len([]rune(articleText)))
		}

		clean := Normalize(cleanSource(articleText, it.Description, it.Title))
		it.Enrichment = &collector.Enrichment{
			ArticleText: articleText,
			TextClean:   clean,
			Tokens:      Tokenize(clean),
		}
		it.Sentiment = nil
		out = append(out, it)
	}

	if p.extractor != nil {
		log.Printf("article extraction done, extracted=%d/%d", extracted, len(items))
	}
	return out
}

// cleanSource 兜底链：正文为空 -> description（去标签）-> title
func cleanSource(articleText, description, title string) string {
	if strings.TrimSpace(articleText) != "" {
		return articleText
	}
	if desc := StripMarkup(description); strings.TrimSpace(desc) != "" {
		return desc
	}
	return title
}

// Score 基于 text_clean 计算情感分数与标签，返回新的切片
func (p *Processor) Score(items []collector.NewsItem) []collector.NewsItem {
	out := make([]collector.NewsItem, 0, len(items))
	for _, it := range items {
		clean := ""
		if it.Enrichment != nil {
			clean = it.TextClean
		}
		score, label := Analyze(clean)
		it.Sentiment = &collector.Sentiment{
			SentimentScore: score,
			SentimentLabel: label,
		}
		out = append(out, it)
	}
	return out
}
