package gotemplate

import (
	"encoding/base64"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func encoded(markup string) string {
	return `"` + encodedMarkupPrefix + base64.RawURLEncoding.EncodeToString([]byte(markup)) + `"`
}

func TestEncodeBlockMarkup(t *testing.T) {
	isTag := func(name string) bool { return name == "label" || name == "lang" }

	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "drops whitespace after the name and keeps the rest",
			src:  `{% lang   Python   %}x{% endlang %}`,
			want: `{% lang ` + encoded("Python   ") + ` %}x{% endlang %}`,
		},
		{
			name: "empty markup",
			src:  `{% label %}x{% endlabel %}`,
			want: `{% label ` + encoded("") + ` %}x{% endlabel %}`,
		},
		{
			name: "quotes and symbols are kept",
			src:  `{% label "C#" it's %}`,
			want: `{% label ` + encoded(`"C#" it's`) + ` %}`,
		},
		{
			name: "whitespace control",
			src:  `a {%- label Go -%} b`,
			want: `a {%- label ` + encoded("Go ") + ` -%} b`,
		},
		{
			name: "other tags untouched",
			src:  `{% if x %}{% labelled y %}{% endif %}`,
			want: `{% if x %}{% labelled y %}{% endif %}`,
		},
		{
			name: "comments variables and verbatim untouched",
			src:  `{# {% label a %} #}{{ "{% label b %}" }}{% verbatim %}{% label c %}{% endverbatim %}`,
			want: `{# {% label a %} #}{{ "{% label b %}" }}{% verbatim %}{% label c %}{% endverbatim %}`,
		},
		{
			name: "unterminated directive",
			src:  `{% label C#`,
			want: `{% label C#`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, encodeBlockMarkup(tc.src, isTag)); diff != "" {
				t.Fatalf("encode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
