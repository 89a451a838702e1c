package node

import (
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 按字符数截断，不会切断多字节字符
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// Excerpt 折叠空白后截取前 n 个字符，被截断时追加省略号
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return TruncateByRunes(s, n) + "…"
}
