package writing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/domain/entity"
)

func TestBuildBackgroundMemory(t *testing.T) {
	res := &retrieval.SearchResult{
		Worldview: "云海之城漂浮在天空",
		Characters: []retrieval.CharacterMatch{
			{Name: "林风", Description: "少年剑客"},
			{Name: "苏晴", Description: "城主之女"},
		},
	}

	got := BuildBackgroundMemory(res)

	assert.Equal(t, "[世界观]\n云海之城漂浮在天空\n\n\n[相关角色]\n- 林风: 少年剑客\n- 苏晴: 城主之女", got)
}

func TestBuildBackgroundMemoryPartial(t *testing.T) {
	assert.Equal(t, "[世界观]\n云海\n\n", BuildBackgroundMemory(&retrieval.SearchResult{Worldview: "云海"}))
	assert.Equal(t, "[相关角色]\n- 林风: 剑客", BuildBackgroundMemory(&retrieval.SearchResult{
		Characters: []retrieval.CharacterMatch{{Name: "林风", Description: "剑客"}},
	}))
	assert.Empty(t, BuildBackgroundMemory(&retrieval.SearchResult{}))
	assert.Empty(t, BuildBackgroundMemory(nil))
}

func TestBuildRecentChapters(t *testing.T) {
	chapters := []*entity.Chapter{
		{Title: "第三章", Content: "三"},
		{Title: "第二章", Content: "二"},
		{Title: "第一章", Content: "一"},
	}

	assert.Equal(t, "[第三章]\n三\n\n[第二章]\n二", BuildRecentChapters(chapters, 2))
	assert.Equal(t, "[第三章]\n三", BuildRecentChapters(chapters[:1], 2))
	assert.Empty(t, BuildRecentChapters(nil, 2))
}
