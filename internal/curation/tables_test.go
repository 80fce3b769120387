package curation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug_CuratedCJK(t *testing.T) {
	tables := Defaults()
	assert.Equal(t, "core-concepts", tables.Slug("核心概念与原理"))
	assert.Equal(t, "cross-domain-applications", tables.Slug("跨界应用与延展思考"))
}

func TestSlug_FallbackPreservesCJK(t *testing.T) {
	tables := Defaults()
	a := tables.Slug("强化学习 入门")
	b := tables.Slug("强化学习 进阶")
	assert.Equal(t, "强化学习-入门", a)
	assert.Equal(t, "强化学习-进阶", b)
	assert.NotEqual(t, a, b)
}

func TestSlugify_Latin(t *testing.T) {
	assert.Equal(t, "rag-best-practices", Slugify("RAG  Best\tPractices!"))
	assert.Equal(t, "c_sharp-notes", Slugify("C_Sharp Notes?"))
}

func TestSlugify_NormalizesDecomposed(t *testing.T) {
	composed := Slugify("Caf\u00e9")
	decomposed := Slugify("Cafe\u0301")
	assert.Equal(t, composed, decomposed)
	assert.Equal(t, "caf\u00e9", composed)
}

func TestSlug_EmptyAfterStrip(t *testing.T) {
	s := Defaults().Slug("!!!")
	require.True(t, strings.HasPrefix(s, "note-"), "slug = %q", s)
	assert.Len(t, s, len("note-")+8)
	assert.Equal(t, s, Defaults().Slug("!!!"), "digest slug must be deterministic")
	assert.NotEqual(t, s, Defaults().Slug("???"))
}

func TestLookupTags(t *testing.T) {
	tables := Defaults()
	tags, ok := tables.LookupTags("提示工程与交互")
	require.True(t, ok)
	assert.Equal(t, []string{"Prompt", "LLM", "交互"}, tags)

	tags[0] = "mutated"
	again, _ := tables.LookupTags("提示工程与交互")
	assert.Equal(t, "Prompt", again[0], "lookup must return a copy")

	_, ok = tables.LookupTags("Unknown")
	assert.False(t, ok)
	assert.Equal(t, []string{"AI", "学习笔记"}, tables.Fallback())
}

func TestMerge_OverridesWin(t *testing.T) {
	merged := Defaults().Merge(Tables{
		Slugs:        map[string]string{"核心概念与原理": "basics", "Go Notes": "go"},
		FallbackTags: []string{"misc"},
	})
	assert.Equal(t, "basics", merged.Slug("核心概念与原理"))
	assert.Equal(t, "go", merged.Slug("Go Notes"))
	assert.Equal(t, "model-architecture", merged.Slug("模型架构与组件"))
	assert.Equal(t, []string{"misc"}, merged.Fallback())

	tags, ok := merged.LookupTags("训练与学习机制")
	require.True(t, ok)
	assert.Equal(t, []string{"训练", "优化", "学习"}, tags)
}
