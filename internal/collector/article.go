package collector

import (
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	DefaultArticleMinChars = 400
	DefaultArticleMaxChars = 8000
)

// containerHints 判断容器节点 class/id 是否像正文包裹层（小写比较）
var containerHints = []string{
	"content", "post", "article", "story",
	"noticia", "notícia", "materia", "matéria",
}

// ExtractorOptions 正文抽取的策略参数
type ExtractorOptions struct {
	UserAgent string
	Timeout   time.Duration
	MinChars  int
	MaxChars  int
}

// ArticleExtractor 抓取新闻原文页面，按启发式规则提取正文
type ArticleExtractor struct {
	opts ExtractorOptions
}

func NewArticleExtractor(opts ExtractorOptions) *ArticleExtractor {
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultArticleMinChars
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultArticleMaxChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &ArticleExtractor{opts: opts}
}

// Extract 返回正文文本；任何失败都返回空串，由调用方走兜底链
func (a *ArticleExtractor) Extract(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	// 每次抓取使用新的 collector，避免 colly 的已访问 URL 去重影响重复链接
	c := colly.NewCollector()
	if a.opts.UserAgent != "" {
		c.UserAgent = a.opts.UserAgent
	}
	c.SetRequestTimeout(a.opts.Timeout)
	// colly 默认把 >= 203 视为错误，这里自行判断 2xx
	c.ParseHTTPErrorResponse = true

	var text string
	c.OnResponse(func(r *colly.Response) {
		if !isSuccess(r.StatusCode) {
			log.Printf("extract article %s error: status=%d", link, r.StatusCode)
		}
	})
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if text != "" || !isSuccess(e.Response.StatusCode) {
			return
		}
		text = a.ExtractText(e.DOM)
	})
	c.OnError(func(r *colly.Response, err error) {
		log.Printf("extract article %s error: status=%d %v", link, r.StatusCode, err)
	})

	if err := c.Visit(link); err != nil {
		return ""
	}
	return text
}

// ExtractText 在已解析的文档上执行抽取级联，先命中者为准
func (a *ArticleExtractor) ExtractText(doc *goquery.Selection) string {
	// 1. <article> 区域
	if art := doc.Find("article").First(); art.Length() > 0 {
		if t := paragraphText(art); runeLen(t) > a.opts.MinChars {
			return t
		}
	}

	// 2. class/id 像正文容器的节点
	var found string
	doc.Find("div, section, main").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !looksLikeContainer(s) {
			return true
		}
		if t := paragraphText(s); runeLen(t) > a.opts.MinChars {
			found = t
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	// 3. 兜底：整页段落
	return truncateRunes(paragraphText(doc), a.opts.MaxChars)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func looksLikeContainer(s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	hint := strings.ToLower(class + " " + id)
	if strings.TrimSpace(hint) == "" {
		return false
	}
	for _, kw := range containerHints {
		if strings.Contains(hint, kw) {
			return true
		}
	}
	return false
}

func paragraphText(s *goquery.Selection) string {
	parts := make([]string, 0, 16)
	s.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

func runeLen(s string) int {
	return len([]rune(s))
}

// truncateRunes 按 rune 截断，避免切断多字节字符
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
