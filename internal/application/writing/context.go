package writing

import (
	"fmt"
	"strings"

	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/domain/entity"
)

// DefaultRecentChapters 注入提示词的最近章节数
const DefaultRecentChapters = 2

// BuildBackgroundMemory 把检索结果渲染为背景资料块：
// 先 [世界观]，再 [相关角色]（每行 "- 名字: 描述"）；两者都为空时返回空串
func BuildBackgroundMemory(res *retrieval.SearchResult) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	if res.Worldview != "" {
		b.WriteString("[世界观]\n")
		b.WriteString(res.Worldview)
		b.WriteString("\n\n")
	}
	if len(res.Characters) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[相关角色]\n")
		lines := make([]string, len(res.Characters))
		for i, c := range res.Characters {
			lines[i] = fmt.Sprintf("- %s: %s", c.Name, c.Description)
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

// BuildRecentChapters 取最新的 limit 个章节（入参需按最新在前排列），
// 每章渲染为 "[标题]\n内容"，章节之间空一行
func BuildRecentChapters(chapters []*entity.Chapter, limit int) string {
	if limit <= 0 {
		limit = DefaultRecentChapters
	}
	if len(chapters) > limit {
		chapters = chapters[:limit]
	}

	blocks := make([]string, 0, len(chapters))
	for _, c := range chapters {
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", c.Title, c.Content))
	}
	return strings.Join(blocks, "\n\n")
}
