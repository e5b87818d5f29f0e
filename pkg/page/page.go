// Package page renders whole documents: optional YAML front matter, a
// template pass that expands block tags, then an optional Markdown pass.
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blocktags/pkg/render/template"
)

// FrontMatterKey is the template variable holding the decoded front matter.
const FrontMatterKey = "page"

var frontMatterFence = []byte("---")

// Document is a source file split into front matter and template content.
type Document struct {
	FrontMatter map[string]any
	Content     string
}

// Parse splits optional `---` fenced YAML front matter from src. Without a
// closing fence the whole source is content.
func Parse(src []byte) (Document, error) {
	doc := Document{Content: string(src)}

	rest, ok := cutFenceLine(src)
	if !ok {
		return doc, nil
	}

	var header []byte
	found := false
	for len(rest) > 0 {
		line, next := splitLine(rest)
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), frontMatterFence) {
			found = true
			rest = next
			break
		}
		header = append(header, line...)
		header = append(header, '\n')
		rest = next
	}
	if !found {
		// A leading rule without a closing fence is content.
		return doc, nil
	}

	matter := map[string]any{}
	if err := yaml.Unmarshal(header, &matter); err != nil {
		return Document{}, fmt.Errorf("page: decode front matter: %w", err)
	}
	doc.FrontMatter = matter
	doc.Content = string(rest)
	return doc, nil
}

func cutFenceLine(src []byte) ([]byte, bool) {
	line, rest := splitLine(src)
	if !bytes.Equal(bytes.TrimRight(line, " \t\r"), frontMatterFence) {
		return nil, false
	}
	return rest, true
}

func splitLine(b []byte) (line, rest []byte) {
	if idx := bytes.IndexByte(b, '\n'); idx >= 0 {
		return b[:idx], b[idx+1:]
	}
	return b, nil
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMarkdown enables or disables the Markdown pass.
func WithMarkdown(enabled bool) Option {
	return func(r *Renderer) {
		r.markdown = enabled
	}
}

// WithMarkdownExtensions overrides the Markdown parser extensions.
func WithMarkdownExtensions(extensions parser.Extensions) Option {
	return func(r *Renderer) {
		r.extensions = extensions
	}
}

// WithLogger sets the logger used for render events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer turns page sources into HTML.
type Renderer struct {
	templates  template.TemplateRenderer
	markdown   bool
	extensions parser.Extensions
	htmlFlags  html.Flags
	logger     *slog.Logger
}

// New constructs a page renderer on top of a template renderer.
func New(templates template.TemplateRenderer, options ...Option) (*Renderer, error) {
	if templates == nil {
		return nil, errors.New("page: template renderer is required")
	}
	r := &Renderer{
		templates:  templates,
		extensions: parser.CommonExtensions,
		htmlFlags:  html.CommonFlags,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Render expands src with data. Front matter values are exposed as `page`.
func (r *Renderer) Render(ctx context.Context, src []byte, data map[string]any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := Parse(src)
	if err != nil {
		return nil, err
	}

	view := make(map[string]any, len(data)+1)
	for key, value := range data {
		view[key] = value
	}
	if doc.FrontMatter != nil {
		view[FrontMatterKey] = doc.FrontMatter
	}

	rendered, err := r.templates.RenderString(doc.Content, view)
	if err != nil {
		return nil, fmt.Errorf("page: render template: %w", err)
	}
	r.logger.Debug("page.template.rendered", "bytes", len(rendered), "front_matter", doc.FrontMatter != nil)

	if !r.markdown {
		return []byte(rendered), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := markdown.ToHTML([]byte(rendered), parser.NewWithExtensions(r.extensions), html.NewRenderer(html.RendererOptions{
		Flags: r.htmlFlags,
	}))
	r.logger.Debug("page.markdown.rendered", "bytes", len(out))
	return out, nil
}
