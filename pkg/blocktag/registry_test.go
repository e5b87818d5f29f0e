package blocktag_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blocktags/pkg/blocktag"
)

func TestRegisterDefaults(t *testing.T) {
	reg := blocktag.NewRegistry()
	if err := blocktag.RegisterDefaults(reg); err != nil {
		t.Fatalf("register defaults: %v", err)
	}

	if diff := cmp.Diff([]string{"label", "lang"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	fragment, err := reg.Render(blocktag.Invocation{TagName: "label", Markup: "Ruby", Body: "puts 1"})
	if err != nil {
		t.Fatalf("render label: %v", err)
	}
	want := `<div class="code-block"><div class="language-tag">Ruby</div><pre class="code-block-inner">puts 1</pre></div>`
	if fragment.String() != want {
		t.Fatalf("label fragment mismatch\nwant: %q\n got: %q", want, fragment)
	}

	fragment, err = reg.Render(blocktag.Invocation{TagName: "LANG", Markup: " sh ", Body: "ls"})
	if err != nil {
		t.Fatalf("render lang: %v", err)
	}
	if fragment.String() != blocktag.Lang(" sh ", "ls") {
		t.Fatalf("lang fragment mismatch: %q", fragment)
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	reg := blocktag.NewRegistry()
	handler := blocktag.New(blocktag.LabelConfig())

	for _, name := range []string{"", "   ", "two words", "1abc", "end-tag"} {
		if err := reg.Register(name, handler); !errors.Is(err, blocktag.ErrInvalidTagName) {
			t.Fatalf("name %q: expected ErrInvalidTagName, got %v", name, err)
		}
	}

	if err := reg.Register("label", nil); err == nil {
		t.Fatalf("expected nil handler error")
	}

	if err := reg.Register(" Label ", handler); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("label", handler); !errors.Is(err, blocktag.ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}
	if !reg.Has("LABEL") {
		t.Fatalf("expected lookup to be case-insensitive")
	}
}

func TestRegistry_Replace(t *testing.T) {
	reg := blocktag.NewRegistry()
	reg.MustRegister("label", blocktag.New(blocktag.LabelConfig()))

	if err := reg.Replace("label", blocktag.HandlerFunc(func(inv blocktag.Invocation) blocktag.Fragment {
		return blocktag.Fragment("[" + inv.Markup + "]")
	})); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := reg.Render(blocktag.Invocation{TagName: "label", Markup: "x"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[x]" {
		t.Fatalf("expected replaced handler output, got %q", got)
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	reg := blocktag.NewRegistry()
	reg.MustRegister("label", blocktag.New(blocktag.LabelConfig()))

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	reg.MustRegister("label", blocktag.New(blocktag.LabelConfig()))
}

func TestRegistry_UnknownTag(t *testing.T) {
	reg := blocktag.NewRegistry()
	_, err := reg.Render(blocktag.Invocation{TagName: "missing"})
	if !errors.Is(err, blocktag.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	reg := blocktag.NewRegistry()
	if err := blocktag.RegisterDefaults(reg); err != nil {
		t.Fatalf("register defaults: %v", err)
	}

	cloned := reg.Clone()
	cloned.MustRegister("console", blocktag.New(blocktag.Config{LangAttr: "console"}))

	if reg.Has("console") {
		t.Fatalf("expected source registry to be untouched")
	}
	if diff := cmp.Diff([]string{"console", "label", "lang"}, cloned.Names()); diff != "" {
		t.Fatalf("clone names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ConcurrentRender(t *testing.T) {
	reg := blocktag.NewRegistry()
	if err := blocktag.RegisterDefaults(reg); err != nil {
		t.Fatalf("register defaults: %v", err)
	}
	want := blocktag.Label("Ruby", "puts 1")

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := reg.Render(blocktag.Invocation{TagName: "label", Markup: " Ruby ", Body: "puts 1"})
			if err != nil || got.String() != want {
				errs <- got.String()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Fatalf("concurrent render mismatch: %q", got)
	}
}
