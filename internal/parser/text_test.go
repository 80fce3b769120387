package parser

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractDescription_SkipsHeadingAndShortSentence(t *testing.T) {
	body := "# Title\n\nThis is a long enough sentence to qualify for extraction. Short."
	got := ExtractDescription(body, 200, "")
	want := "This is a long enough sentence to qualify for extraction"
	if got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}

func TestExtractDescription_CJKSentence(t *testing.T) {
	body := "## 概述\n\n大语言模型是一种基于深度学习的自然语言处理模型，能够理解和生成文本。其他内容。"
	got := ExtractDescription(body, 200, "")
	if got != "大语言模型是一种基于深度学习的自然语言处理模型，能够理解和生成文本" {
		t.Errorf("description = %q", got)
	}
}

func TestExtractDescription_StripsInlineSyntax(t *testing.T) {
	body := "- **Bold** and *italic* with `code` and a [link](https://example.com) inside a list item."
	got := ExtractDescription(body, 200, "")
	want := "Bold and italic with code and a link inside a list item"
	if got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}

func TestExtractDescription_FallbackToWholeText(t *testing.T) {
	got := ExtractDescription("Tiny. Also tiny!", 200, "")
	if got != "Tiny. Also tiny!" {
		t.Errorf("description = %q", got)
	}
}

func TestExtractDescription_Truncates(t *testing.T) {
	body := strings.Repeat("长", 250)
	got := ExtractDescription(body, 200, "")
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 201 {
		t.Errorf("rune count = %d, want 201", n)
	}
}

func TestExtractDescription_Placeholder(t *testing.T) {
	if got := ExtractDescription("# Only a heading\n", 200, ""); got != DefaultPlaceholder {
		t.Errorf("description = %q, want placeholder", got)
	}
	if got := ExtractDescription("   ", 200, "No description"); got != "No description" {
		t.Errorf("description = %q, want custom placeholder", got)
	}
}

func TestPlainText_Blockquote(t *testing.T) {
	if got := PlainText("> quoted line\n> second"); got != "quoted line second" {
		t.Errorf("plain = %q", got)
	}
}

func TestCountTokens_Mixed(t *testing.T) {
	// 4 Han characters, 3 latin words; digits and punctuation don't count.
	if got := CountTokens("机器学习 uses GPT-4 models."); got != 7 {
		t.Errorf("tokens = %d, want 7", got)
	}
}

func TestReadTime_FourHundredTokens(t *testing.T) {
	body := strings.Repeat("word ", 200) + strings.Repeat("字", 200)
	if got := ReadTime(body, 200); got != "2 min" {
		t.Errorf("readTime = %q, want 2 min", got)
	}
}

func TestReadTime_RoundsUp(t *testing.T) {
	if got := ReadTime(strings.Repeat("word ", 201), 200); got != "2 min" {
		t.Errorf("readTime = %q, want 2 min", got)
	}
	if got := ReadTime("one", 0); got != "1 min" {
		t.Errorf("readTime = %q, want 1 min", got)
	}
	if got := ReadTime("", 200); got != "0 min" {
		t.Errorf("readTime = %q, want 0 min", got)
	}
}

func TestPlainText_CollapsesUnicodeSpaces(t *testing.T) {
	if got := PlainText("a\u00a0\u00a0\u00a0b\u3000\u3000c"); got != "a b c" {
		t.Errorf("plain = %q, want %q", got, "a b c")
	}
}

func TestExtractDescription_IdeographicSpace(t *testing.T) {
	body := "这是一个非常非常长的句子，\u3000\u3000\u3000它应该被提取出来作为描述内容。结尾。"
	got := ExtractDescription(body, 200, "")
	want := "这是一个非常非常长的句子， 它应该被提取出来作为描述内容"
	if got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}
