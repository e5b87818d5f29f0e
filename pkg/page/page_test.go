package page_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blocktags/pkg/blocktag"
	"github.com/goliatone/go-blocktags/pkg/page"
	"github.com/goliatone/go-blocktags/pkg/render/template/gotemplate"
	"github.com/goliatone/go-blocktags/pkg/testsupport"
)

func TestParse_FrontMatter(t *testing.T) {
	doc, err := page.Parse([]byte("---\ntitle: Hello\ntags: [a, b]\n---\nbody\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	wantMatter := map[string]any{"title": "Hello", "tags": []any{"a", "b"}}
	if diff := cmp.Diff(wantMatter, doc.FrontMatter); diff != "" {
		t.Fatalf("front matter mismatch (-want +got):\n%s", diff)
	}
	if doc.Content != "body\n" {
		t.Fatalf("unexpected content %q", doc.Content)
	}
}

func TestParse_WithoutFrontMatter(t *testing.T) {
	src := "{% label Ruby %}puts 1{% endlabel %}\n---\n"
	doc, err := page.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.FrontMatter != nil {
		t.Fatalf("expected no front matter, got %v", doc.FrontMatter)
	}
	if doc.Content != src {
		t.Fatalf("content changed: %q", doc.Content)
	}
}

func TestParse_UnclosedFenceIsContent(t *testing.T) {
	src := "---\nnot front matter, just a rule\n\nText\n"
	doc, err := page.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.FrontMatter != nil {
		t.Fatalf("expected no front matter, got %v", doc.FrontMatter)
	}
	if doc.Content != src {
		t.Fatalf("content changed: %q", doc.Content)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := page.Parse([]byte("---\ntitle: [\n---\n")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestRender_TemplateOnly(t *testing.T) {
	renderer := newRenderer(t)

	out, err := renderer.Render(testsupport.Context(), []byte("---\ntitle: Hi\n---\n{{ page.title }}: {% label Ruby %}puts 1{% endlabel %}"), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Hi: " + blocktag.Label("Ruby", "puts 1")
	if string(out) != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, out)
	}
}

func TestRender_Markdown(t *testing.T) {
	renderer := newRenderer(t, page.WithMarkdown(true))
	src := testsupport.MustReadGolden(t, filepath.Join("testdata", "install.md"))

	out, err := renderer.Render(testsupport.Context(), src, map[string]any{"command": "jekyll serve"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := string(out)
	for _, fragment := range []string{
		"Install</h1>",
		blocktag.Lang("bash", "gem install jekyll"),
		"<p>Then run jekyll serve.</p>",
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, html)
		}
	}
}

func TestRender_LeadingRule(t *testing.T) {
	renderer := newRenderer(t, page.WithMarkdown(true))

	out, err := renderer.Render(testsupport.Context(), []byte("---\n\nIntro\n"), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<hr") || !strings.Contains(html, "<p>Intro</p>") {
		t.Fatalf("expected rule and paragraph, got %q", html)
	}
}

func TestRender_CanceledContext(t *testing.T) {
	renderer := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := renderer.Render(ctx, []byte("x"), nil); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNew_RequiresTemplates(t *testing.T) {
	if _, err := page.New(nil); err == nil {
		t.Fatalf("expected error for nil template renderer")
	}
}

func newRenderer(t *testing.T, options ...page.Option) *page.Renderer {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithRegistry(testsupport.MustDefaultRegistry(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	renderer, err := page.New(engine, options...)
	if err != nil {
		t.Fatalf("new page renderer: %v", err)
	}
	return renderer
}
