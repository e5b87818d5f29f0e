package blocktags_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	blocktags "github.com/goliatone/go-blocktags"
	"github.com/goliatone/go-blocktags/pkg/blocktag"
)

func TestRenderString_EndToEnd(t *testing.T) {
	got, err := blocktags.RenderString(`{% label Ruby %}puts 1{% endlabel %}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<div class="code-block"><div class="language-tag">Ruby</div><pre class="code-block-inner">puts 1</pre></div>`
	if got != want {
		t.Fatalf("end-to-end mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestNewRegistry_ConfigFile(t *testing.T) {
	registry, err := blocktags.NewRegistry(blocktags.WithConfigFile(filepath.Join("testdata", "tags.yaml")))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if diff := cmp.Diff([]string{"console", "label", "lang"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	fragment, err := registry.Render(blocktag.Invocation{TagName: "lang", Markup: "sh", Body: "ls"})
	if err != nil {
		t.Fatalf("render lang: %v", err)
	}
	want := `<div class="code-block"><div class="language-tag">sh</div><pre class="code-block-inner" lang="bash">ls</pre></div>`
	if fragment.String() != want {
		t.Fatalf("file definition did not replace lang\nwant: %q\n got: %q", want, fragment)
	}
}

func TestNewEngine_EscapeOverride(t *testing.T) {
	engine, err := blocktags.NewEngine(blocktags.WithEscape(blocktag.EscapeHTML))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderString(`{% lang sh %}{{ cmd|safe }}{% endlang %}`, map[string]any{"cmd": "a && b"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<div class="code-block"><div class="language-tag">sh</div><pre class="code-block-inner" lang="shell">a &amp;&amp; b</pre></div>`
	if got != want {
		t.Fatalf("escape override mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestNewRegistry_MissingConfig(t *testing.T) {
	if _, err := blocktags.NewRegistry(blocktags.WithConfigFile(filepath.Join("testdata", "missing.yaml"))); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestNewEngine_WithFilter(t *testing.T) {
	shout := func(input any, _ any) (any, error) {
		return strings.ToUpper(fmt.Sprint(input)) + "!", nil
	}

	for i := 0; i < 2; i++ {
		engine, err := blocktags.NewEngine(blocktags.WithFilter("shout_block", shout))
		if err != nil {
			t.Fatalf("new engine %d: %v", i, err)
		}
		got, err := engine.RenderString(`{% lang sh %}{{ cmd|shout_block }}{% endlang %}`, map[string]any{"cmd": "ls"})
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if want := blocktag.Lang("sh", "LS!"); got != want {
			t.Fatalf("filter mismatch\nwant: %q\n got: %q", want, got)
		}
	}
}
