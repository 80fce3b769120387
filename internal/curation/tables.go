// Package curation holds the hand-maintained category tables (slug overrides
// and default tags) and the slug derivation used when a category has no
// override.
package curation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/starford/folio/internal/checksum"
)

// Tables maps category names to curated values. It is plain configuration
// and is loaded from the YAML config, falling back to Defaults.
type Tables struct {
	Slugs        map[string]string   `yaml:"slugs"`
	Tags         map[string][]string `yaml:"tags"`
	FallbackTags []string            `yaml:"fallback_tags"`
}

// Defaults returns the tables for the AI knowledge-base notes shipped with the site.
func Defaults() Tables {
	return Tables{
		Slugs: map[string]string{
			"核心概念与原理":   "core-concepts",
			"模型架构与组件":   "model-architecture",
			"训练与学习机制":   "training-learning",
			"提示工程与交互":   "prompt-engineering",
			"数据处理与特征工程": "data-processing",
			"性能评估与优化":   "performance-optimization",
			"特定应用领域术语":  "domain-applications",
			"前沿技术与概念":   "frontier-technologies",
			"未来趋势与演进":   "future-trends",
			"跨界应用与延展思考": "cross-domain-applications",
		},
		Tags: map[string][]string{
			"核心概念与原理":   {"AI", "基础概念", "机器学习"},
			"模型架构与组件":   {"深度学习", "神经网络", "架构"},
			"训练与学习机制":   {"训练", "优化", "学习"},
			"提示工程与交互":   {"Prompt", "LLM", "交互"},
			"数据处理与特征工程": {"数据", "特征工程", "预处理"},
			"性能评估与优化":   {"评估", "优化", "性能"},
			"特定应用领域术语":  {"应用", "NLP", "CV"},
			"前沿技术与概念":   {"前沿", "研究", "创新"},
			"未来趋势与演进":   {"趋势", "AGI", "未来"},
			"跨界应用与延展思考": {"跨领域", "思考", "应用"},
		},
		FallbackTags: []string{"AI", "学习笔记"},
	}
}

// Merge overlays o onto t: entries in o win, missing ones keep t's values.
func (t Tables) Merge(o Tables) Tables {
	out := Tables{
		Slugs:        make(map[string]string, len(t.Slugs)+len(o.Slugs)),
		Tags:         make(map[string][]string, len(t.Tags)+len(o.Tags)),
		FallbackTags: t.FallbackTags,
	}
	for k, v := range t.Slugs {
		out.Slugs[k] = v
	}
	for k, v := range o.Slugs {
		out.Slugs[k] = v
	}
	for k, v := range t.Tags {
		out.Tags[k] = v
	}
	for k, v := range o.Tags {
		out.Tags[k] = v
	}
	if len(o.FallbackTags) > 0 {
		out.FallbackTags = o.FallbackTags
	}
	return out
}

// LookupSlug returns the curated slug for category, if any.
func (t Tables) LookupSlug(category string) (string, bool) {
	s, ok := t.Slugs[category]
	if !ok {
		s, ok = t.Slugs[norm.NFC.String(category)]
	}
	return s, ok && s != ""
}

// LookupTags returns the curated tags for category, if any.
func (t Tables) LookupTags(category string) ([]string, bool) {
	tags, ok := t.Tags[category]
	if !ok {
		tags, ok = t.Tags[norm.NFC.String(category)]
	}
	if !ok {
		return nil, false
	}
	return append([]string{}, tags...), true
}

// Fallback returns a copy of the generic tag set for unknown categories.
func (t Tables) Fallback() []string {
	return append([]string{}, t.FallbackTags...)
}

// Slugify lowercases text, turns whitespace runs into "-" and drops every
// rune that is not a letter, digit, mark, "_" or "-". Letters outside ASCII
// (CJK in particular) are kept so distinct categories stay distinct.
// Text is NFC-normalized first so composed and decomposed spellings agree.
func Slugify(text string) string {
	text = strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug resolves the slug for category: curated override first, then
// Slugify, then a stable digest-based name when nothing survives slugifying.
func (t Tables) Slug(category string) string {
	if s, ok := t.LookupSlug(category); ok {
		return s
	}
	if s := strings.Trim(Slugify(category), "-"); s != "" {
		return s
	}
	return "note-" + checksum.Short([]byte(category), 8)
}
