package blocktag

import (
	"html"
	"strings"
)

const (
	// ShellLang is the lang attribute the `lang` tag places on its pre element.
	ShellLang = "shell"

	containerOpen = `<div class="code-block"><div class="language-tag">`
	innerOpen     = `</div><pre class="code-block-inner"`
	containerEnd  = `</pre></div>`
)

// Invocation carries the arguments of a single block tag occurrence.
type Invocation struct {
	// TagName is the registered tag name, e.g. "label" or "lang".
	TagName string
	// Markup is the raw text following the tag name on the opening directive.
	Markup string
	// Body is the inner content, already rendered by the host engine.
	Body string
}

// Fragment is the HTML produced by a single invocation.
type Fragment string

func (f Fragment) String() string {
	return string(f)
}

// Handler renders a block tag invocation.
type Handler interface {
	RenderBlock(inv Invocation) Fragment
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(inv Invocation) Fragment

// RenderBlock calls f(inv).
func (f HandlerFunc) RenderBlock(inv Invocation) Fragment {
	return f(inv)
}

// Config parameterizes a Renderer.
type Config struct {
	// Trim strips leading and trailing whitespace from the markup.
	Trim bool
	// LangAttr, when set, is written as the lang attribute of the pre element.
	LangAttr string
	// Escape controls how markup and body are escaped before interpolation.
	Escape EscapePolicy
}

// LabelConfig is the configuration of the `label` tag.
func LabelConfig() Config {
	return Config{Trim: true}
}

// LangConfig is the configuration of the `lang` tag. The markup is used
// untrimmed.
func LangConfig() Config {
	return Config{LangAttr: ShellLang}
}

// Renderer wraps a body in the code-block markup. The zero value renders with
// untrimmed markup, no lang attribute and no escaping.
type Renderer struct {
	cfg Config
}

var _ Handler = (*Renderer)(nil)

// New constructs a Renderer for cfg.
func New(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	if r == nil {
		return Config{}
	}
	return r.cfg
}

// Render produces the code-block fragment for markup and body.
func (r *Renderer) Render(markup, body string) string {
	cfg := r.Config()

	if cfg.Trim {
		markup = strings.TrimSpace(markup)
	}
	markup = cfg.Escape.escapeLabel(markup)
	body = cfg.Escape.escapeBody(body)

	var b strings.Builder
	b.Grow(len(containerOpen) + len(markup) + len(innerOpen) + len(body) + len(containerEnd) + len(cfg.LangAttr) + 10)
	b.WriteString(containerOpen)
	b.WriteString(markup)
	b.WriteString(innerOpen)
	if cfg.LangAttr != "" {
		b.WriteString(` lang="`)
		b.WriteString(html.EscapeString(cfg.LangAttr))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(body)
	b.WriteString(containerEnd)
	return b.String()
}

// RenderBlock implements Handler. The tag name does not affect the output.
func (r *Renderer) RenderBlock(inv Invocation) Fragment {
	return Fragment(r.Render(inv.Markup, inv.Body))
}

var (
	labelRenderer = New(LabelConfig())
	langRenderer  = New(LangConfig())
)

// Label renders the `label` tag: trimmed markup, plain pre element.
func Label(markup, body string) string {
	return labelRenderer.Render(markup, body)
}

// Lang renders the `lang` tag: verbatim markup, pre element marked as shell.
func Lang(markup, body string) string {
	return langRenderer.Render(markup, body)
}
