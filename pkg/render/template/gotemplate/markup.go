package gotemplate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// encodedMarkupPrefix marks a tag argument written by encodeBlockMarkup.
const encodedMarkupPrefix = "blocktag:"

const (
	verbatimOpen  = "{% verbatim %}"
	verbatimClose = "{% endverbatim %}"
)

// encodeBlockMarkup rewrites the opening directive of every block tag for
// which isTag reports true so its raw markup reaches the tag parser as one
// string literal. Like Liquid, whitespace between the tag name and the markup
// is dropped and everything up to the closing delimiter is kept. Whitespace
// control dashes are preserved. Comments, variable blocks and verbatim
// sections are copied untouched.
func encodeBlockMarkup(src string, isTag func(name string) bool) string {
	var b strings.Builder
	b.Grow(len(src))

	i := 0
	for i < len(src) {
		j := nextDelimiter(src, i)
		if j < 0 {
			b.WriteString(src[i:])
			break
		}
		b.WriteString(src[i:j])

		if strings.HasPrefix(src[j:], verbatimOpen) {
			end := strings.Index(src[j+len(verbatimOpen):], verbatimClose)
			if end < 0 {
				b.WriteString(src[j:])
				break
			}
			stop := j + len(verbatimOpen) + end + len(verbatimClose)
			b.WriteString(src[j:stop])
			i = stop
			continue
		}

		closer := "%}"
		switch src[j+1] {
		case '{':
			closer = "}}"
		case '#':
			closer = "#}"
		}
		end := strings.Index(src[j+2:], closer)
		if end < 0 {
			b.WriteString(src[j:])
			break
		}
		stop := j + 2 + end + len(closer)
		directive := src[j:stop]
		i = stop

		if closer != "%}" {
			b.WriteString(directive)
			continue
		}
		if rewritten, ok := rewriteDirective(directive, isTag); ok {
			b.WriteString(rewritten)
			continue
		}
		b.WriteString(directive)
	}
	return b.String()
}

// nextDelimiter returns the index of the next `{%`, `{{` or `{#` at or after
// from, or -1.
func nextDelimiter(src string, from int) int {
	for i := from; i < len(src)-1; i++ {
		if src[i] != '{' {
			continue
		}
		switch src[i+1] {
		case '%', '{', '#':
			return i
		}
	}
	return -1
}

func rewriteDirective(directive string, isTag func(string) bool) (string, bool) {
	inner := directive[2 : len(directive)-2]

	trimLeft := strings.HasPrefix(inner, "-")
	if trimLeft {
		inner = inner[1:]
	}
	inner = strings.TrimLeft(inner, " \t\r\n")

	nameEnd := 0
	for nameEnd < len(inner) && isIdentByte(inner[nameEnd]) {
		nameEnd++
	}
	name := inner[:nameEnd]
	if name == "" || !isTag(name) {
		return "", false
	}

	markup := strings.TrimLeft(inner[nameEnd:], " \t\r\n")
	trimRight := strings.HasSuffix(markup, "-")
	if trimRight {
		markup = markup[:len(markup)-1]
	}

	var b strings.Builder
	b.WriteString("{%")
	if trimLeft {
		b.WriteByte('-')
	}
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(` "`)
	b.WriteString(encodedMarkupPrefix)
	b.WriteString(base64.RawURLEncoding.EncodeToString([]byte(markup)))
	b.WriteString(`" `)
	if trimRight {
		b.WriteByte('-')
	}
	b.WriteString("%}")
	return b.String(), true
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// decodeMarkup recovers the raw markup from the single encoded argument of a
// block tag.
func decodeMarkup(arguments *pongo2.Parser) (string, error) {
	if arguments.Count() != 1 {
		return "", fmt.Errorf("expected 1 encoded argument, got %d", arguments.Count())
	}
	tok := arguments.Get(0)
	if tok == nil || tok.Typ != pongo2.TokenString || !strings.HasPrefix(tok.Val, encodedMarkupPrefix) {
		return "", fmt.Errorf("argument was not encoded")
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(tok.Val, encodedMarkupPrefix))
	if err != nil {
		return "", fmt.Errorf("decode markup: %w", err)
	}
	return string(raw), nil
}

// markupLoader encodes block tag markup in every template the wrapped loader
// returns, including those pulled in by include and extends.
type markupLoader struct {
	pongo2.TemplateLoader
}

func (l markupLoader) Get(path string) (io.Reader, error) {
	r, err := l.TemplateLoader.Get(path)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader([]byte(encodeBlockMarkup(string(src), isInstalled))), nil
}
