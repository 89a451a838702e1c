package retrieval

import (
	"sort"
	"strings"
)

// lowerKeywords 逐个转小写，不去重也不丢弃任何条目
func lowerKeywords(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = strings.ToLower(k)
	}
	return out
}

func countMatches(text string, lowered []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, k := range lowered {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

// KeywordMatch 返回 text 中出现（不区分大小写的子串）的关键词条目数，重复条目分别计数
func KeywordMatch(text string, keywords []string) int {
	return countMatches(text, lowerKeywords(keywords))
}

// KeywordSearch 过滤掉零命中的文本，按命中数降序排列，命中数相同保持原顺序。
// 关键词为空时原样返回 texts。
func KeywordSearch(texts []string, keywords []string) []string {
	if len(keywords) == 0 {
		return texts
	}
	lowered := lowerKeywords(keywords)

	type scored struct {
		text    string
		matches int
	}
	hits := make([]scored, 0, len(texts))
	for _, t := range texts {
		if n := countMatches(t, lowered); n > 0 {
			hits = append(hits, scored{text: t, matches: n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].matches > hits[j].matches
	})

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.text
	}
	return out
}
