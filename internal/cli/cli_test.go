package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t   *testing.T
	dir string
	db  string
}

func newHarness(t *testing.T) *harness {
	color.NoColor = true
	dir := t.TempDir()
	return &harness{t: t, dir: dir, db: filepath.Join(dir, "novel.db")}
}

// run 执行一条命令并返回标准输出
func (h *harness) run(stdin string, args ...string) (string, error) {
	root, a := newRootCommand()
	defer a.close()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", h.dir, "--db", h.db, "--api-key", ""}, args...))

	err := root.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func TestBookLifecycle(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("book", "list"), "no books")
	assert.Contains(t, h.mustRun("book", "add", "云海纪事"), "created book 1")
	h.mustRun("book", "add", "铁与火")

	out := h.mustRun("book", "list")
	assert.Less(t, strings.Index(out, "铁与火"), strings.Index(out, "云海纪事"))

	assert.Contains(t, h.mustRun("book", "rm", "1"), "deleted book 1")
	assert.NotContains(t, h.mustRun("book", "list"), "云海纪事")

	_, err := h.run("", "book", "rm", "1")
	assert.Error(t, err)
}

func TestCharactersAndLiteralSearch(t *testing.T) {
	h := newHarness(t)
	h.mustRun("book", "add", "云海纪事")

	h.mustRun("character", "add", "1", "Anna", "--desc", "持剑的少女，来自云海")
	h.mustRun("character", "add", "1", "Bob", "--desc", "沉默的铁匠")

	out := h.mustRun("character", "list", "1")
	assert.Contains(t, out, "Anna")
	assert.Contains(t, out, "Bob")
	// 未配置 API key 时同步向量化失败，但写入成功
	assert.Contains(t, out, "向量化失败")

	out = h.mustRun("search", "1", "-q", "铁匠", "--mode", "literal")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "99%")
	assert.NotContains(t, out, "Anna")

	h.mustRun("character", "rm", "2")
	assert.NotContains(t, h.mustRun("character", "list", "1"), "Bob")
}

func TestKeywordSearchJSON(t *testing.T) {
	h := newHarness(t)
	h.mustRun("book", "add", "云海纪事")
	h.mustRun("character", "add", "1", "Anna", "--desc", "持剑的少女，来自云海")

	out := h.mustRun("search", "1", "-q", "云海", "--mode", "keyword", "-k", "云海", "--json")
	assert.Contains(t, out, `"mode": "keyword"`)
	assert.Contains(t, out, `"name": "Anna"`)
}

func TestWorldviewFromStdin(t *testing.T) {
	h := newHarness(t)
	h.mustRun("book", "add", "云海纪事")

	_, err := h.run("浮空岛屿环绕着云海\n", "worldview", "set", "1")
	require.NoError(t, err)

	out := h.mustRun("worldview", "show", "1")
	assert.Contains(t, out, "浮空岛屿环绕着云海")

	h.mustRun("worldview", "clear", "1")
	assert.Contains(t, h.mustRun("worldview", "show", "1"), "no worldview")
}

func TestChapters(t *testing.T) {
	h := newHarness(t)
	h.mustRun("book", "add", "云海纪事")

	assert.Contains(t, h.mustRun("chapter", "add", "1", "第一章", "--content", "风起"), "(2 chars)")
	h.mustRun("chapter", "add", "1", "第二章", "--content", "云涌")

	out := h.mustRun("chapter", "list", "1")
	assert.Less(t, strings.Index(out, "第二章"), strings.Index(out, "第一章"))

	h.mustRun("chapter", "rm", "1")
	assert.NotContains(t, h.mustRun("chapter", "list", "1"), "第一章")
}

func TestInvalidIDs(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "character", "list", "abc")
	assert.ErrorContains(t, err, "invalid book id")

	_, err = h.run("", "search", "42", "-q", "x")
	assert.Error(t, err)
}
