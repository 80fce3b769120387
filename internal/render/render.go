// Package render converts note markdown into HTML for page collaborators.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer wraps a configured goldmark engine. The engine holds no
// per-document state, so one Renderer serves all requests.
type Renderer struct {
	md goldmark.Markdown
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	unsafe    bool
	hardWraps bool
}

// WithUnsafeHTML passes raw HTML in notes through to the output.
func WithUnsafeHTML() Option { return func(c *config) { c.unsafe = true } }

// WithHardWraps renders single newlines as <br>.
func WithHardWraps() Option { return func(c *config) { c.hardWraps = true } }

// New builds a Renderer with GitHub-flavoured markdown, linkify, task lists
// and footnotes. Headings get generated id attributes for in-page anchors.
func New(opts ...Option) *Renderer {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	var rendererOpts []renderer.Option
	if cfg.unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	if cfg.hardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}

	engineOpts := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
			extension.Footnote,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOpts) > 0 {
		engineOpts = append(engineOpts, goldmark.WithRendererOptions(rendererOpts...))
	}
	return &Renderer{md: goldmark.New(engineOpts...)}
}

// Render converts markdown to an HTML fragment.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
