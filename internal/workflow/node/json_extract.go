// Package node 提供模型输出的后处理工具
package node

import (
	"encoding/json"
	"strings"
)

// ExtractJSONArray 从模型输出中截取第一个 "[" 到最后一个 "]" 之间的内容，
// 截取结果不是合法 JSON 时返回空串。模型常在数组前后夹带说明文字或 ``` 代码块。
func ExtractJSONArray(s string) string {
	raw := strings.TrimSpace(s)
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return ""
	}
	raw = raw[start : end+1]
	if !json.Valid([]byte(raw)) {
		return ""
	}
	return raw
}

// DecodeStringArray 解析模型输出中的字符串数组，ok 为 false 表示输出不是数组格式
func DecodeStringArray(s string) (out []string, ok bool) {
	raw := ExtractJSONArray(s)
	if raw == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}
	return out, true
}
