package processor

import "strings"

const (
	LabelPositive = "positivo"
	LabelNeutral  = "neutro"
	LabelNegative = "negativo"
)

// 规则词表：显式、非穷举，只做简单计数，不是学习得到的模型
var (
	positiveWords = map[string]struct{}{
		"bom": {}, "positivo": {}, "aprovado": {}, "inovador": {}, "avançado": {}, "promissor": {},
	}
	negativeWords = map[string]struct{}{
		"ruim": {}, "crítico": {}, "problema": {}, "preocupação": {}, "risco": {}, "polêmica": {},
	}
)

// Score 对文本小写后按空白切分，正向词 +1、负向词 -1。
// 注意这里重新切分的是 text_clean，而不是过滤停用词后的 tokens。
func Score(text string) int {
	score := 0
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if _, ok := positiveWords[tok]; ok {
			score++
		}
		if _, ok := negativeWords[tok]; ok {
			score--
		}
	}
	return score
}

func Label(score int) string {
	switch {
	case score > 0:
		return LabelPositive
	case score < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Analyze 计算分数与标签
func Analyze(text string) (int, string) {
	score := Score(text)
	return score, Label(score)
}
