package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritingTemplateFormat(t *testing.T) {
	msgs, err := NewRegistry().Format(context.Background(), PromptWritingV1, map[string]any{
		"recent_chapters":   "[第一章]\n开篇",
		"background_memory": "[世界观]\n云海之城",
		"user_input":        "写主角初到云海",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "[前文脉络 - 最新两章]\n[第一章]\n开篇")
	assert.Contains(t, msgs[0].Content, "[世界观/角色资料]\n[世界观]\n云海之城")
	assert.Contains(t, msgs[0].Content, "---\n写主角初到云海\n---")
	assert.NotContains(t, msgs[0].Content, "{user_input}")
}

func TestKeywordsTemplateFormat(t *testing.T) {
	msgs, err := NewRegistry().Format(context.Background(), PromptKeywordsV1, map[string]any{
		"text": "林风在{雨夜}遇见师父",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "用逗号分隔关键词")
	assert.Equal(t, "林风在{雨夜}遇见师父", msgs[1].Content)
}

func TestUnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("nope")
	assert.Error(t, err)
}

func TestRegistryCachesTemplates(t *testing.T) {
	r := NewRegistry()
	a, err := r.ChatTemplate(PromptWritingV1)
	require.NoError(t, err)
	b, err := r.ChatTemplate(PromptWritingV1)
	require.NoError(t, err)
	assert.Same(t, a, b)
}
