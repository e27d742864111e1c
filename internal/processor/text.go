package processor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// StripMarkup 去掉 HTML/XML 标签，只保留文本节点；解析失败时原样返回
func StripMarkup(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

// Normalize 统一为 NFC、小写，去掉标点与符号，并把连续空白压缩为单个空格。
// 对自身输出再次调用结果不变。
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(norm.NFC.String(strings.TrimSpace(text)))
	text = strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
	// 去掉符号后相邻字母可能再次组合，需要再做一次 NFC
	text = norm.NFC.String(text)
	return strings.Join(strings.Fields(text), " ")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokenize 按空白切分，过滤停用词与长度 <= 2 的词；保留原有顺序与重复项
func Tokenize(clean string) []string {
	fields := strings.Fields(clean)
	tokens := make([]string, 0, len(fields))
	for _, t := range fields {
		if utf8.RuneCountInString(t) <= 2 || IsStopword(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}
