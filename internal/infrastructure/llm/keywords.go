package llm

import (
	"strings"

	"z-novel-writer/internal/workflow/node"
)

// keywordSeparators 模型常输出全角逗号或顿号，统一按分隔符处理
var keywordSeparators = strings.NewReplacer("，", ",", "、", ",")

// ParseKeywords 解析逗号分隔的关键词：切分、去空白、丢弃空项。
// 部分模型无视提示词返回 JSON 字符串数组，这种格式也接受。
func ParseKeywords(raw string) []string {
	if items, ok := node.DecodeStringArray(raw); ok {
		return cleanKeywords(items)
	}
	raw = keywordSeparators.Replace(strings.TrimSpace(raw))
	if raw == "" {
		return []string{}
	}
	return cleanKeywords(strings.Split(raw, ","))
}

func cleanKeywords(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
