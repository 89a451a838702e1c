package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeStringArray(t *testing.T) {
	out, ok := DecodeStringArray("关键词如下：\n```json\n[\"林风\", \"雨夜\"]\n```")
	assert.True(t, ok)
	assert.Equal(t, []string{"林风", "雨夜"}, out)

	_, ok = DecodeStringArray("林风, 雨夜")
	assert.False(t, ok)

	_, ok = DecodeStringArray("[林风, 雨夜]")
	assert.False(t, ok, "unquoted items are not JSON")

	_, ok = DecodeStringArray("[1, 2]")
	assert.False(t, ok)
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "云海", TruncateByRunes("云海之城", 2))
	assert.Equal(t, "abc", TruncateByRunes("abc", 5))
	assert.Empty(t, TruncateByRunes("abc", 0))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b", Excerpt("a\n  b", 10))
	assert.Equal(t, "云海…", Excerpt("云海之城", 2))
}
