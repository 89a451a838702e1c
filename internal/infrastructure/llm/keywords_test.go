package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"林风", "雨夜", "师父"}, ParseKeywords(" 林风, 雨夜 ,师父 "))
	assert.Equal(t, []string{"林风", "雨夜", "师父"}, ParseKeywords("林风，雨夜、师父"))
	assert.Equal(t, []string{"a", "b"}, ParseKeywords("a,,b,"))
	assert.Empty(t, ParseKeywords("   "))
	assert.NotNil(t, ParseKeywords(""))
}

func TestParseKeywordsJSONArray(t *testing.T) {
	assert.Equal(t, []string{"林风", "雨夜"}, ParseKeywords("```json\n[\"林风\", \" 雨夜 \", \"\"]\n```"))
	assert.Equal(t, []string{"[林风", "雨夜]"}, ParseKeywords("[林风, 雨夜]"))
}
